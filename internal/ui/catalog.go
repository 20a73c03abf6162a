package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/diagnostic"
)

// RenderPlan renders one subscription plan card. Popular plans get a
// highlighted border and badge.
func RenderPlan(p catalog.Plan, width int) string {
	title := CardTitleStyle.Render(p.Name)
	if p.Popular {
		title += " " + BadgeStyle.Render("人気No.1")
	}

	price := PriceStyle.Render(catalog.FormatYen(p.FirstMonthPrice)) +
		MutedStyle.Render(" 初月") + "  " +
		StrikeStyle.Render(catalog.FormatYen(p.OriginalPrice)) +
		" " + BadgeStyle.Render(fmt.Sprintf("%d%%OFF", p.DiscountPercent()))

	lines := []string{
		title,
		MutedStyle.Render(p.Description),
		"",
		price,
		BodyStyle.Render(fmt.Sprintf("%dg / %d種類", p.WeightGrams, p.Varieties)) +
			MutedStyle.Render("  "+p.TargetUser),
		"",
	}
	for _, f := range p.Features {
		lines = append(lines, StepCompleteStyle.Render(SuccessMarker)+" "+BodyStyle.Render(f))
	}

	return CardStyle(width, p.Popular).Render(strings.Join(lines, "\n"))
}

// RenderPlans renders every plan card, one below the other
func RenderPlans(c *catalog.Catalog, width int) string {
	cards := make([]string, 0, len(c.Plans))
	for _, p := range c.Plans {
		cards = append(cards, RenderPlan(p, width))
	}
	return strings.Join(cards, "\n")
}

// RenderFlavorBar renders one flavour note as a labelled bar
func RenderFlavorBar(f catalog.Flavor, barWidth int) string {
	filled := f.Intensity * barWidth / 100
	bar := lipgloss.NewStyle().Foreground(PrimaryColor).Render(strings.Repeat("█", filled)) +
		MutedStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %s", lipgloss.NewStyle().Width(12).Render(f.Name), bar, MutedStyle.Render(fmt.Sprintf("%3d", f.Intensity)))
}

// RenderCoffee renders the coffee of the month with its flavour profile,
// the producer story and next month's preview
func RenderCoffee(coffee catalog.Coffee, width int) string {
	detail := func(k, v string) string {
		return ResultKeyStyle.Render(k) + BodyStyle.Render(v)
	}

	lines := []string{
		CardTitleStyle.Render(coffee.Origin),
		"",
		detail("Farm", coffee.Farm),
		detail("Altitude", coffee.Altitude),
		detail("Process", coffee.Process),
		detail("Score", fmt.Sprintf("%d", coffee.Score)),
		"",
		CardTitleStyle.Render("Flavor Profile"),
	}
	for _, f := range coffee.Flavors {
		lines = append(lines, RenderFlavorBar(f, 30))
	}

	if len(coffee.Story) > 0 {
		lines = append(lines, "", CardTitleStyle.Render("Producer Story"))
		body := BodyStyle.Width(width - 8)
		for _, para := range coffee.Story {
			lines = append(lines, body.Render(para), "")
		}
		lines = lines[:len(lines)-1]
	}

	if coffee.NextMonth.Origin != "" {
		lines = append(lines, "",
			MutedStyle.Render("Next month: ")+BodyStyle.Render(coffee.NextMonth.Origin),
			MutedStyle.Width(width-8).Render(coffee.NextMonth.Preview))
	}

	return CardStyle(width, true).Render(strings.Join(lines, "\n"))
}

// RenderTestimonial renders one testimonial card
func RenderTestimonial(t catalog.Testimonial, width int) string {
	lines := []string{
		RenderStars(t.Rating),
		"",
		BodyStyle.Width(width - 8).Render("“" + t.Comment + "”"),
		"",
		CardTitleStyle.Render(t.Name) + MutedStyle.Render(fmt.Sprintf("  %s · %s", t.Plan, t.Period)),
	}
	return CardStyle(width, false).Render(strings.Join(lines, "\n"))
}

// RenderIndicators renders the carousel dots with the active one
// highlighted
func RenderIndicators(count, active int) string {
	dots := make([]string, count)
	for i := range dots {
		if i == active {
			dots[i] = lipgloss.NewStyle().Foreground(PrimaryColor).Render("●")
		} else {
			dots[i] = MutedStyle.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

// RenderFAQ renders FAQ entries. Entries whose ID is in open show their
// answer; the rest show only the question.
func RenderFAQ(entries []catalog.FAQEntry, open map[int]bool, width int) string {
	var b strings.Builder
	answer := BodyStyle.Width(width - 8).PaddingLeft(4)
	for i, e := range entries {
		marker := "+"
		if open[e.ID] {
			marker = "−"
		}
		b.WriteString(CardTitleStyle.Render(fmt.Sprintf("%s Q%d. ", marker, e.ID)))
		b.WriteString(BodyStyle.Render(e.Question))
		if open[e.ID] {
			b.WriteString("\n")
			b.WriteString(answer.Render(e.Answer))
		}
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderRecommendation renders the diagnostic result
func RenderRecommendation(rec diagnostic.Recommendation, width int) string {
	lines := []string{
		MutedStyle.Render("あなたにおすすめのプラン"),
		CardTitleStyle.Render(rec.Plan.Name) + "  " +
			PriceStyle.Render(catalog.FormatYen(rec.Plan.FirstMonthPrice)) + MutedStyle.Render(" 初月"),
		MutedStyle.Render(rec.Plan.TargetUser),
		"",
		MutedStyle.Render("おすすめの豆"),
		CardTitleStyle.Render(rec.Bean.Name),
		BodyStyle.Width(width - 8).Render(rec.Bean.Description),
	}
	return CardStyle(width, true).Render(strings.Join(lines, "\n"))
}

// RenderContactInfo renders the support contact details
func RenderContactInfo(info catalog.ContactInfo) string {
	detail := func(k, v string) string {
		return ResultKeyStyle.Render("   "+k+":") + " " + ResultValueStyle.Render(v)
	}
	return strings.Join([]string{
		detail("Email", info.Email),
		detail("Phone", info.Phone),
		detail("Hours", info.Hours),
		detail("Address", info.Address),
	}, "\n")
}
