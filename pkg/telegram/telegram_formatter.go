package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"golang-stock-watchlist/internal/watcher/dto"
)

// FormatPrice renders a whole-KRW price with thousands separators.
func FormatPrice(price int64) string {
	s := strconv.FormatInt(price, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatAlertForTelegram formats a target-rate alert as a Markdown message.
func FormatAlertForTelegram(p dto.AlertNotification) string {
	var b strings.Builder
	b.WriteString("🚀 *관심종목 알림!*\n\n")
	fmt.Fprintf(&b, "📌 종목: *%s* (%s)\n", p.StockName, p.StockCode)
	fmt.Fprintf(&b, "📅 편입일: %s\n", p.EnrolledDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "📉 D-0 저가: %s원\n", FormatPrice(p.D0LowPrice))
	fmt.Fprintf(&b, "📈 오늘 종가: %s원\n", FormatPrice(p.ClosePrice))
	fmt.Fprintf(&b, "🔥 상승률: *+%.2f%%*\n", p.ChangeRate)
	fmt.Fprintf(&b, "📆 달성일차: D+%d\n", p.DayIndex)
	return b.String()
}

// FormatExpirationForTelegram formats a watch-window expiration message.
func FormatExpirationForTelegram(p dto.ExpirationNotification) string {
	var b strings.Builder
	b.WriteString("⏰ *관심종목 편출 (관찰기간 만료)*\n\n")
	fmt.Fprintf(&b, "📍 종목: *%s* (%s)\n", p.StockName, p.StockCode)
	fmt.Fprintf(&b, "📅 편입일: %s\n", p.EnrolledDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "📉 D-0 저가: %s원\n", FormatPrice(p.D0LowPrice))
	fmt.Fprintf(&b, "📊 기간 내 최고 상승률: *+%.2f%%*\n", p.PeakRate)
	fmt.Fprintf(&b, "📆 관찰일수: %d일\n", p.DayIndex)
	b.WriteString("❌ 목표 미달성으로 편출\n")
	return b.String()
}

// FormatEnrollmentForTelegram formats a new-enrollment message.
func FormatEnrollmentForTelegram(p dto.EnrollmentNotification) string {
	var b strings.Builder
	b.WriteString("📌 *관심종목 편입!*\n\n")
	fmt.Fprintf(&b, "📍 종목: *%s* (%s)\n", p.StockName, p.StockCode)
	fmt.Fprintf(&b, "📅 편입일: %s\n", p.EnrolledDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "📉 D-0 저가: %s원\n", FormatPrice(p.D0LowPrice))
	fmt.Fprintf(&b, "🎯 목표가 (%.0f%%): %s원\n", p.TargetRate, FormatPrice(p.TargetPrice))
	fmt.Fprintf(&b, "⏳ 관찰기간: %d영업일\n", p.WatchDays)
	return b.String()
}

// FormatRemovalForTelegram formats a manual-removal message.
func FormatRemovalForTelegram(p dto.RemovalNotification) string {
	var b strings.Builder
	b.WriteString("🗑 *관심종목 편출 (수동 삭제)*\n\n")
	fmt.Fprintf(&b, "📍 종목: *%s* (%s)\n", p.StockName, p.StockCode)
	b.WriteString("👤 사용자에 의해 관찰 종료\n")
	return b.String()
}

// FormatDailySummaryForTelegram formats the end-of-run summary message.
func FormatDailySummaryForTelegram(p dto.DailySummaryNotification) string {
	var b strings.Builder
	b.WriteString("📊 *일일 요약*\n\n")
	fmt.Fprintf(&b, "👀 관찰 중: %d종목\n", p.WatchingCount)
	fmt.Fprintf(&b, "🚀 오늘 달성: %d종목\n", p.AlertedToday)
	fmt.Fprintf(&b, "⏰ 오늘 만료: %d종목\n", p.ExpiredToday)
	return b.String()
}
