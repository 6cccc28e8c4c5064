package app

import (
	"github.com/John-Robertt/yymm/internal/domain"
	"github.com/John-Robertt/yymm/internal/naming"
)

// PhotoGroup 是同一张逻辑照片（去掉编辑标记后路径相同）的所有变体。
// 为了数据局部性，PhotoGroup 只保存文件下标（指向 []ImageFile），避免复制结构体。
type PhotoGroup struct {
	Key     string // 去掉编辑标记后的绝对路径
	FileIdx []int
}

// GroupByPhoto 按逻辑照片身份分组。
//
// - 组的顺序：按首次出现顺序
// - 组内顺序：保持输入顺序
//
// 身份包含目录，因此不同目录下的同名文件永远不会落入同一组。
func GroupByPhoto(files []domain.ImageFile) []PhotoGroup {
	index := make(map[string]int, len(files))
	groups := make([]PhotoGroup, 0, len(files))

	for i := range files {
		key, _ := naming.BasePath(files[i].AbsPath)
		if idx, ok := index[key]; ok {
			groups[idx].FileIdx = append(groups[idx].FileIdx, i)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, PhotoGroup{Key: key, FileIdx: []int{i}})
	}
	return groups
}

// Discarded 记录一个被淘汰的变体以及保留下来的胜者。
type Discarded struct {
	File   domain.ImageFile
	Winner domain.ImageFile
}

// Dedupe 在每组逻辑照片中按 policy 选出唯一胜者。
//
// 选择规则（首个出现者为初始胜者）：
// - PreferEdited：候选是编辑版而当前胜者不是 => 替换
// - PreferOriginal：候选是原图而当前胜者是编辑版 => 替换
//
// 落选者只用于报告，绝不删除。kept 与 discarded 是输入的一个划分。
func Dedupe(files []domain.ImageFile, policy domain.KeepPolicy) (kept []domain.ImageFile, discarded []Discarded) {
	groups := GroupByPhoto(files)
	kept = make([]domain.ImageFile, 0, len(groups))
	discarded = make([]Discarded, 0, len(files)-len(groups))

	for _, g := range groups {
		win := g.FileIdx[0]
		for _, cand := range g.FileIdx[1:] {
			candEdited := naming.IsEdited(files[cand].AbsPath)
			winEdited := naming.IsEdited(files[win].AbsPath)
			switch policy {
			case domain.PreferEdited:
				if candEdited && !winEdited {
					win = cand
				}
			case domain.PreferOriginal:
				if !candEdited && winEdited {
					win = cand
				}
			}
		}

		kept = append(kept, files[win])
		for _, idx := range g.FileIdx {
			if idx == win {
				continue
			}
			discarded = append(discarded, Discarded{File: files[idx], Winner: files[win]})
		}
	}
	return kept, discarded
}
