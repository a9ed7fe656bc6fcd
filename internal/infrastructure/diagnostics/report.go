package diagnostics

import (
	"strings"

	"journey-harness/internal/domain/entity"

	"github.com/fatih/color"
)

// Render formats r the way failures are shown to the person running the
// suite. colored toggles the red banner.
func Render(r *entity.FailureReport, colored bool) string {
	if r == nil {
		return ""
	}

	banner := color.New(color.BgRed)
	if colored {
		banner.EnableColor()
	} else {
		banner.DisableColor()
	}

	var sb strings.Builder
	sb.WriteString(banner.Sprint(r.TestID + "のテストに失敗しました"))
	sb.WriteString("\n")

	if r.Kind == entity.FailureAssertion {
		if shot, ok := r.Screenshot(); ok {
			sb.WriteString("失敗時の画面スクリーンショット：" + shot.Path + "\n")
		}
		sb.WriteString("エラーメッセージ：" + r.Message + "\n")
		sb.WriteString("比較：\n")
		sb.WriteString(r.Comparison)
	} else {
		sb.WriteString("エラーメッセージ：" + r.Message + "\n")
		sb.WriteString("エラートレース：\n")
		for _, f := range r.Trace {
			sb.WriteString(f.String() + "\n")
		}
	}

	for _, note := range r.Notes {
		sb.WriteString("備考：" + note + "\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
