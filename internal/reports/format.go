package reports

import (
	"fmt"
	"strconv"
	"strings"
)

// Message renders the report as the LINE notification sent to the admin
// user.
func Message(r *Report) string {
	var b strings.Builder
	b.WriteString("【" + r.Type.Label() + "】\n")
	b.WriteString(r.PeriodLabel() + "\n\n")

	b.WriteString("■ 売上・利益サマリー\n")
	b.WriteString(fmt.Sprintf("売上件数: %d件\n", r.Sales.SalesCount))
	b.WriteString("総売上高: " + yen(r.Sales.TotalSales) + "\n")
	b.WriteString("純利益: " + yen(r.Sales.NetProfit) + "\n")
	if r.Sales.SalesCount > 0 {
		b.WriteString("平均利益/件: " + yen(r.Sales.AvgProfitPerItem) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("■ 在庫状況\n")
	b.WriteString(fmt.Sprintf("新規登録: %d件 / 売却: %d件\n",
		r.Inventory.NewRegistrations, r.Inventory.SoldCount))
	b.WriteString(fmt.Sprintf("出品中: %d件（在庫金額 %s）\n",
		r.Inventory.EndInventory, yen(r.Inventory.InventoryValue)))
	b.WriteString("\n")

	b.WriteString("■ カテゴリ別分析\n")
	if len(r.Categories) == 0 {
		b.WriteString("（期間内の売上なし）")
	} else {
		lines := make([]string, 0, len(r.Categories))
		for _, c := range r.Categories {
			lines = append(lines, fmt.Sprintf("%s: %d件 / %s / 利益率 %.1f%%",
				c.Category, c.SalesCount, yen(c.SalesAmount), c.ProfitRate))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	return b.String()
}

// yen formats an amount as ¥1,234 with thousands separators.
func yen(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "¥" + b.String()
}
