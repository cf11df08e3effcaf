package timeslot

import (
	"context"
	"sort"
	"time"

	"github.com/ixugo/goddd/pkg/reason"
)

// Segment 单个日历日内的一段在场时间
type Segment struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// LabelTotal 单个展示标签在查询窗口内的累计时长
type LabelTotal struct {
	Label      string `json:"label"`
	DurationMs int64  `json:"duration_ms"`
}

// DaySegments 单个展示标签在某个日历日内的在场分段
type DaySegments struct {
	Label    string    `json:"label"`
	Day      string    `json:"day"` // 本地日历日，格式 2006.01.02
	Segments []Segment `json:"segments"`
}

// RangeReport 查询窗口内的聚合结果。
// Totals 与 Days 基于同一份裁剪结果，任一标签的分段时长之和等于其累计时长
type RangeReport struct {
	FromMs int64         `json:"from_ms"`
	ToMs   int64         `json:"to_ms"`
	Totals []LabelTotal  `json:"totals"`
	Days   []DaySegments `json:"days"`
}

// clippedSlot 裁剪到查询窗口后的区间
type clippedSlot struct {
	label   string
	startMs int64
	endMs   int64
}

// QueryRange 聚合查询窗口 [fromMs, toMs] 内的在场数据。
// 窗口内没有任何区间不是错误，返回空结果
func (c Core) QueryRange(ctx context.Context, fromMs, toMs int64) (*RangeReport, error) {
	if fromMs <= 0 || toMs <= 0 || toMs < fromMs {
		return nil, reason.ErrBadRequest.Withf("invalid range [%d, %d]", fromMs, toMs)
	}

	rows, err := c.store.Timeslot().FindOverlapping(ctx, fromMs, toMs)
	if err != nil {
		return nil, reason.ErrDB.Withf(`FindOverlapping [%d, %d] err[%s]`, fromMs, toMs, err.Error())
	}

	clipped := clipToWindow(rows, fromMs, toMs)

	out := RangeReport{
		FromMs: fromMs,
		ToMs:   toMs,
		Totals: sumTotals(clipped),
		Days:   splitByDay(clipped),
	}
	return &out, nil
}

// clipToWindow 归一化时间单位并裁剪到窗口边界。
// 打开的区间以 min(last_seen_at, toMs) 为结束，最近一次确认在场之后不计入；
// 裁剪后长度不为正的区间丢弃
func clipToWindow(rows []*Timeslot, fromMs, toMs int64) []clippedSlot {
	out := make([]clippedSlot, 0, len(rows))
	for _, r := range rows {
		start := r.NormStartedAt()
		end := r.NormLastSeenAt()
		if e := r.NormEndedAt(); e != nil {
			end = *e
		}

		if start < fromMs {
			start = fromMs
		}
		if end > toMs {
			end = toMs
		}
		if end <= start {
			continue
		}
		out = append(out, clippedSlot{label: r.Label(), startMs: start, endMs: end})
	}
	return out
}

func sumTotals(clipped []clippedSlot) []LabelTotal {
	totals := make(map[string]int64, 8)
	for _, s := range clipped {
		totals[s.label] += s.endMs - s.startMs
	}

	out := make([]LabelTotal, 0, len(totals))
	for label, dur := range totals {
		out = append(out, LabelTotal{Label: label, DurationMs: dur})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationMs != out[j].DurationMs {
			return out[i].DurationMs > out[j].DurationMs
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// splitByDay 将裁剪后的区间按本地日历日边界拆分。
// 从区间开始反复推进到 min(区间结束, 次日零点)，跨天的区间拆成多段
func splitByDay(clipped []clippedSlot) []DaySegments {
	type groupKey struct {
		label string
		day   string
	}
	groups := make(map[groupKey][]Segment, 8)

	for _, s := range clipped {
		cur := s.startMs
		for {
			dayEnd := startOfNextDay(cur)
			segEnd := s.endMs
			if dayEnd < segEnd {
				segEnd = dayEnd
			}
			k := groupKey{label: s.label, day: formatDay(cur)}
			groups[k] = append(groups[k], Segment{StartMs: cur, EndMs: segEnd})
			if segEnd >= s.endMs {
				break
			}
			cur = segEnd
		}
	}

	out := make([]DaySegments, 0, len(groups))
	for k, segs := range groups {
		sort.Slice(segs, func(i, j int) bool { return segs[i].StartMs < segs[j].StartMs })
		out = append(out, DaySegments{Label: k.label, Day: k.day, Segments: segs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// startOfNextDay 本地时区内下一个日历日零点的毫秒时间戳
func startOfNextDay(ms int64) int64 {
	t := time.UnixMilli(ms).Local()
	next := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.Local)
	return next.UnixMilli()
}

func formatDay(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006.01.02")
}
