package report

import "fmt"

const (
	draftTemperature   = 0.2
	enhanceTemperature = 0.3
)

const draftSystemPrompt = "You are a careful research assistant. Write a concise, well-structured report with headings, bullet points, and short paragraphs. Include citations as numbered [n] markers mapped to the provided source list. If something is uncertain, state so."

const enhanceSystemPrompt = "You are an expert content enhancer. Improve clarity, add examples, brief case studies, and practical takeaways for different stakeholders. Keep original structure but expand with useful detail. Do not invent citations; keep the same [n] mapping."

func draftUserPrompt(topic, sourcesDigest string) string {
	return fmt.Sprintf("TOPIC: %s\n\nSOURCES:\n%s\n\nWrite a report (600–1000 words) covering: key points, context/background, current developments, risks/limitations, and a short FAQ. Use [n] citation markers that refer to the numbered sources above.", topic, sourcesDigest)
}

func enhanceUserPrompt(draft string) string {
	return "Enhance the following report. Preserve headings and citation markers.\n\n" + draft
}
