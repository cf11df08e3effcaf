package timeslot

import (
	"testing"
	"time"
)

func ptr(v int64) *int64 { return &v }

func TestClipToWindow(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local).UnixMilli()

	t.Run("闭区间裁剪到窗口边界", func(t *testing.T) {
		rows := []*Timeslot{{
			BucketKey:  KeyFaceKnown,
			PersonID:   "anna",
			StartedAt:  base + 100,
			EndedAt:    ptr(base + 500),
			LastSeenAt: base + 500,
		}}
		out := clipToWindow(rows, base+200, base+400)
		if len(out) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(out))
		}
		if dur := out[0].endMs - out[0].startMs; dur != 200 {
			t.Errorf("clipped duration = %d, want 200", dur)
		}
	})

	t.Run("打开区间以最近在场时间为界", func(t *testing.T) {
		rows := []*Timeslot{{
			BucketKey:  KeyFaceKnown,
			PersonID:   "anna",
			StartedAt:  base,
			LastSeenAt: base + 300,
		}}
		out := clipToWindow(rows, base, base+1000)
		if len(out) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(out))
		}
		if out[0].endMs != base+300 {
			t.Errorf("end = %d, want %d", out[0].endMs, base+300)
		}
	})

	t.Run("裁剪后长度不为正的区间丢弃", func(t *testing.T) {
		rows := []*Timeslot{{
			BucketKey:  KeyFaceUnknown,
			StartedAt:  base,
			EndedAt:    ptr(base + 100),
			LastSeenAt: base + 100,
		}}
		out := clipToWindow(rows, base+200, base+400)
		if len(out) != 0 {
			t.Fatalf("expected empty, got %d", len(out))
		}
	})

	t.Run("秒级旧数据归一化后参与裁剪", func(t *testing.T) {
		rows := []*Timeslot{{
			BucketKey:  KeyFaceUnknown,
			StartedAt:  1_700_000_000, // 秒
			EndedAt:    ptr(int64(1_700_000_600)),
			LastSeenAt: 1_700_000_600,
		}}
		out := clipToWindow(rows, 1_700_000_000_000, 1_700_001_000_000)
		if len(out) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(out))
		}
		if out[0].startMs != 1_700_000_000_000 {
			t.Errorf("start = %d, want %d", out[0].startMs, int64(1_700_000_000_000))
		}
		if dur := out[0].endMs - out[0].startMs; dur != 600_000 {
			t.Errorf("duration = %d, want 600000", dur)
		}
	})
}

func TestLabelFallback(t *testing.T) {
	tests := []struct {
		slot Timeslot
		want string
	}{
		{Timeslot{BucketKey: KeyFaceKnown, PersonID: "anna"}, "anna"},
		{Timeslot{BucketKey: KeyFaceKnown, PersonID: ""}, LabelUnknownFace},
		{Timeslot{BucketKey: KeyFaceUnknown}, LabelUnknownFace},
		{Timeslot{BucketKey: KeyPersonMovement}, LabelMovement},
	}
	for _, tt := range tests {
		if got := tt.slot.Label(); got != tt.want {
			t.Errorf("Label(%s, %q) = %q, want %q", tt.slot.BucketKey, tt.slot.PersonID, got, tt.want)
		}
	}
}

func TestSplitByDayAcrossMidnight(t *testing.T) {
	start := time.Date(2026, 3, 10, 23, 30, 0, 0, time.Local)
	end := start.Add(time.Hour) // 次日 00:30

	out := splitByDay([]clippedSlot{{
		label:   "anna",
		startMs: start.UnixMilli(),
		endMs:   end.UnixMilli(),
	}})

	if len(out) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(out))
	}
	if out[0].Day != "2026.03.10" || out[1].Day != "2026.03.11" {
		t.Errorf("days = %s, %s", out[0].Day, out[1].Day)
	}
	for i, g := range out {
		if g.Label != "anna" {
			t.Errorf("group %d label = %s", i, g.Label)
		}
		if len(g.Segments) != 1 {
			t.Fatalf("group %d segments = %d", i, len(g.Segments))
		}
		if dur := g.Segments[0].EndMs - g.Segments[0].StartMs; dur != 30*60*1000 {
			t.Errorf("group %d duration = %d, want 30m", i, dur)
		}
	}
	midnight := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local).UnixMilli()
	if out[0].Segments[0].EndMs != midnight || out[1].Segments[0].StartMs != midnight {
		t.Errorf("segments not split at midnight: %+v", out)
	}
}

// 同一份裁剪结果生成两种聚合，任一标签的分段时长之和应等于其累计时长
func TestTotalsMatchDaySegments(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	clipped := []clippedSlot{
		{label: "anna", startMs: day1.UnixMilli(), endMs: day1.Add(2 * time.Hour).UnixMilli()},
		{label: "anna", startMs: day1.Add(22 * time.Hour).UnixMilli(), endMs: day1.Add(26 * time.Hour).UnixMilli()},
		{label: LabelMovement, startMs: day1.UnixMilli(), endMs: day1.Add(time.Hour).UnixMilli()},
	}

	totals := sumTotals(clipped)
	days := splitByDay(clipped)

	segSum := make(map[string]int64)
	for _, g := range days {
		for _, s := range g.Segments {
			segSum[g.Label] += s.EndMs - s.StartMs
		}
	}

	for _, tt := range totals {
		if segSum[tt.Label] != tt.DurationMs {
			t.Errorf("label %s: segments sum %d != total %d", tt.Label, segSum[tt.Label], tt.DurationMs)
		}
	}
	if len(totals) != 2 {
		t.Errorf("totals = %+v", totals)
	}
	// 累计时长降序
	if totals[0].Label != "anna" {
		t.Errorf("first total = %s, want anna", totals[0].Label)
	}
}

func TestNormalizeStoredUnits(t *testing.T) {
	slot := Timeslot{
		StartedAt:  1_700_000_000, // 秒级旧数据
		LastSeenAt: 1_700_000_000_123,
		EndedAt:    ptr(int64(1_700_000_500)),
	}
	if got := slot.NormStartedAt(); got != 1_700_000_000_000 {
		t.Errorf("NormStartedAt = %d", got)
	}
	if got := slot.NormLastSeenAt(); got != 1_700_000_000_123 {
		t.Errorf("NormLastSeenAt = %d", got)
	}
	if got := slot.NormEndedAt(); got == nil || *got != 1_700_000_500_000 {
		t.Errorf("NormEndedAt = %v", got)
	}
	open := Timeslot{StartedAt: 1_700_000_000_000, LastSeenAt: 1_700_000_000_000}
	if open.NormEndedAt() != nil {
		t.Error("open slot should have nil NormEndedAt")
	}
}
