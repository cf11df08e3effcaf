package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/presence/internal/core/timeslot"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Kopsavilkums"
	sheetPeriods = "Periodi"
)

// exportTimeslots 导出查询窗口内的报表为 xlsx。
// 第一张表为各人员累计时长，第二张表为逐日在场分段
func (a TimeslotAPI) exportTimeslots(c *gin.Context) {
	from, err := parseExportDate(c.Query("date_from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid date_from"})
		return
	}
	to, err := parseExportDate(c.Query("date_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid date_to"})
		return
	}

	report, err := a.timeslotCore.QueryRange(c.Request.Context(), from.UnixMilli(), to.UnixMilli())
	if err != nil {
		web.Fail(c, err)
		return
	}

	f, err := renderReportXLSX(report)
	if err != nil {
		web.Fail(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("timeslots_%s_to_%s.xlsx", formatYMD(from), formatYMD(to))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		web.Fail(c, err)
	}
}

// parseExportDate 接受日期或日期时间两种格式
func parseExportDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func renderReportXLSX(report *timeslot.RangeReport) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetSummary)
	if _, err := f.NewSheet(sheetPeriods); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rangeLabel := fmt.Sprintf("%s-%s",
		formatYMD(time.UnixMilli(report.FromMs).Local()),
		formatYMD(time.UnixMilli(report.ToMs).Local()),
	)

	// 第一张表：累计时长
	_ = f.SetColWidth(sheetSummary, "A", "A", 32)
	_ = f.SetColWidth(sheetSummary, "B", "B", 14)
	_ = f.SetCellValue(sheetSummary, "A1", fmt.Sprintf("Strādnieku darba stundas perioda no %s:", rangeLabel))
	_ = f.MergeCell(sheetSummary, "A1", "B1")
	_ = f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)
	_ = f.SetCellValue(sheetSummary, "A3", "Strādnieks")
	_ = f.SetCellValue(sheetSummary, "B3", "Kopējais laiks")
	_ = f.SetCellStyle(sheetSummary, "A3", "B3", headerStyle)

	row := 4
	for _, t := range report.Totals {
		_ = f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), t.Label)
		_ = f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), msToHm(t.DurationMs))
		row++
	}

	// 第二张表：逐日分段
	_ = f.SetColWidth(sheetPeriods, "A", "A", 30)
	_ = f.SetCellValue(sheetPeriods, "A1", fmt.Sprintf("Strādnieku darba periodi par periodu %s:", rangeLabel))
	_ = f.SetCellStyle(sheetPeriods, "A1", "A1", titleStyle)

	row = 3
	for _, day := range report.Days {
		_ = f.SetCellValue(sheetPeriods, fmt.Sprintf("A%d", row), fmt.Sprintf("%s %s:", day.Label, day.Day))
		_ = f.SetCellStyle(sheetPeriods, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		row++
		for _, seg := range day.Segments {
			start := time.UnixMilli(seg.StartMs).Local()
			end := time.UnixMilli(seg.EndMs).Local()
			_ = f.SetCellValue(sheetPeriods, fmt.Sprintf("A%d", row),
				fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04")))
			row++
		}
		row++
	}

	return f, nil
}

func formatYMD(t time.Time) string {
	return t.Format("2006.01.02")
}

// msToHm 将毫秒时长格式化为 1h5m / 45m 的形式
func msToHm(ms int64) string {
	totalMinutes := ms / 60000
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	h := totalMinutes / 60
	m := totalMinutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
