package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tender-backend/internal/shared/storage/object"
)

// generateReports renders the Arabic and English summaries and persists
// both to the object store under the tender's reports prefix.
func generateReports(ctx context.Context, store object.ObjectStore, tenderID, tenderName string,
	requirements requirementsAnalysis, financial Financial, technical Technical, market Market,
	recommendation Recommendation, generatedAt time.Time) (Reports, error) {

	reports := Reports{
		Arabic:  renderArabicReport(tenderID, tenderName, requirements, financial, technical, market, recommendation, generatedAt),
		English: renderEnglishReport(tenderID, tenderName, requirements, financial, technical, market, recommendation, generatedAt),
	}

	if store == nil {
		return reports, nil
	}

	arabicKey := fmt.Sprintf("%s/reports/report_ar.txt", tenderID)
	if _, err := store.SaveWithKey(ctx, arabicKey, "text/plain; charset=utf-8", strings.NewReader(reports.Arabic)); err != nil {
		return Reports{}, fmt.Errorf("save arabic report: %w", err)
	}
	reports.ArabicKey = arabicKey

	englishKey := fmt.Sprintf("%s/reports/report_en.txt", tenderID)
	if _, err := store.SaveWithKey(ctx, englishKey, "text/plain; charset=utf-8", strings.NewReader(reports.English)); err != nil {
		return Reports{}, fmt.Errorf("save english report: %w", err)
	}
	reports.EnglishKey = englishKey

	return reports, nil
}

func renderArabicReport(tenderID, tenderName string, requirements requirementsAnalysis,
	financial Financial, technical Technical, market Market, recommendation Recommendation,
	generatedAt time.Time) string {

	var b strings.Builder
	b.WriteString("تقرير تحليل المنافسة\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "رقم المنافسة: %s\n", tenderID)
	if tenderName != "" {
		fmt.Fprintf(&b, "اسم المنافسة: %s\n", tenderName)
	}
	fmt.Fprintf(&b, "تاريخ التقرير: %s\n\n", generatedAt.Format("2006-01-02"))

	if requirements.ExecutiveSummary.AR != "" {
		b.WriteString("الملخص التنفيذي:\n")
		b.WriteString(requirements.ExecutiveSummary.AR)
		b.WriteString("\n\n")
	}

	b.WriteString("التوصية: ")
	if recommendation.ShouldBid {
		b.WriteString("التقدم للمنافسة")
	} else {
		b.WriteString("عدم التقدم")
	}
	fmt.Fprintf(&b, " (الأولوية: %s)\n\n", recommendation.Priority)

	b.WriteString("التقييم المالي:\n")
	fmt.Fprintf(&b, "  التكلفة الإجمالية: %.2f ريال\n", financial.TotalCost)
	fmt.Fprintf(&b, "  العرض الموصى به: %.2f ريال\n", financial.RecommendedBid)
	fmt.Fprintf(&b, "  هامش الربح: %.1f%%\n", financial.ProfitMargin)
	fmt.Fprintf(&b, "  الربح المتوقع: %.2f ريال\n\n", financial.ExpectedProfit)

	b.WriteString("التقييم الفني:\n")
	fmt.Fprintf(&b, "  درجة الجدوى: %.1f (%s)\n", technical.FeasibilityScore, technical.FeasibilityLevel)
	fmt.Fprintf(&b, "  مطابقة القدرات: %.1f%%\n\n", technical.CapabilityMatch)

	b.WriteString("أبحاث السوق:\n")
	fmt.Fprintf(&b, "  منافسات مشابهة: %d\n", market.SimilarTenders)
	fmt.Fprintf(&b, "  موردون محتملون: %d\n", market.SuppliersFound)

	return b.String()
}

func renderEnglishReport(tenderID, tenderName string, requirements requirementsAnalysis,
	financial Financial, technical Technical, market Market, recommendation Recommendation,
	generatedAt time.Time) string {

	var b strings.Builder
	b.WriteString("Tender Analysis Report\n")
	b.WriteString("======================\n\n")
	fmt.Fprintf(&b, "Tender ID: %s\n", tenderID)
	if tenderName != "" {
		fmt.Fprintf(&b, "Tender name: %s\n", tenderName)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("2006-01-02"))

	if requirements.ExecutiveSummary.EN != "" {
		b.WriteString("Executive summary:\n")
		b.WriteString(requirements.ExecutiveSummary.EN)
		b.WriteString("\n\n")
	}

	verdict := "Do not bid"
	if recommendation.ShouldBid {
		verdict = "Bid"
	}
	fmt.Fprintf(&b, "Recommendation: %s (priority: %s)\n\n", verdict, recommendation.Priority)

	if len(recommendation.KeyStrengths) > 0 {
		b.WriteString("Key strengths:\n")
		for _, s := range recommendation.KeyStrengths {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
		b.WriteString("\n")
	}
	if len(recommendation.KeyConcerns) > 0 {
		b.WriteString("Key concerns:\n")
		for _, c := range recommendation.KeyConcerns {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
		b.WriteString("\n")
	}

	b.WriteString("Financial evaluation:\n")
	fmt.Fprintf(&b, "  Total cost: SAR %.2f\n", financial.TotalCost)
	fmt.Fprintf(&b, "  Recommended bid: SAR %.2f\n", financial.RecommendedBid)
	fmt.Fprintf(&b, "  Profit margin: %.1f%%\n", financial.ProfitMargin)
	fmt.Fprintf(&b, "  Expected profit: SAR %.2f\n\n", financial.ExpectedProfit)

	b.WriteString("Technical evaluation:\n")
	fmt.Fprintf(&b, "  Feasibility score: %.1f (%s)\n", technical.FeasibilityScore, technical.FeasibilityLevel)
	fmt.Fprintf(&b, "  Capability match: %.1f%%\n\n", technical.CapabilityMatch)

	b.WriteString("Market research:\n")
	fmt.Fprintf(&b, "  Similar tenders found: %d\n", market.SimilarTenders)
	fmt.Fprintf(&b, "  Potential suppliers: %d\n", market.SuppliersFound)

	return b.String()
}
