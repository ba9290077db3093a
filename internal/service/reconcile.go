package service

import "slices"

// Reconcile 计算从 current 到 target 的最小增量：toAdd = target − current，toRemove = current − target。
// 结果升序、去重，且永不为 nil。
func Reconcile(current, target []uint64) (toAdd, toRemove []uint64) {
	cur := make(map[uint64]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	tgt := make(map[uint64]struct{}, len(target))
	for _, id := range target {
		tgt[id] = struct{}{}
	}

	toAdd, toRemove = []uint64{}, []uint64{}
	for id := range tgt {
		if _, ok := cur[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range cur {
		if _, ok := tgt[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	slices.Sort(toAdd)
	slices.Sort(toRemove)
	return toAdd, toRemove
}

// normalizeIDs 去重排序；出现 0 视为非法
func normalizeIDs(ids []uint64) ([]uint64, bool) {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > 0 && out[0] == 0 {
		return nil, false
	}
	if out == nil {
		out = []uint64{}
	}
	return out, true
}
