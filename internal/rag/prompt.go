package rag

import (
	"encoding/json"
	"strings"

	"github.com/upb/placement-rag/models"
)

// FallbackAnswer is the sentence the generator must use when the context has no answer
const FallbackAnswer = "I'm sorry, I couldn't find any relevant information based on the documents provided."

// Instruction constrains the generator to the retrieved placement records
const Instruction = `You are a placement-analysis assistant for a university training and placement cell.
You answer questions about student placement offers using ONLY the records given in the context.

Rules:
1. Answer strictly from the context. Do not use outside knowledge.
2. If the answer is not present in the context, reply exactly: "` + FallbackAnswer + `"
3. Never invent students, companies, roles, or compensation figures.
4. Present answers as clean summaries. Use bullet points when listing several offers.
5. Always state CTC values in LPA and stipends in thousands per month when they are relevant.
6. Mention the role and the company sector when describing an offer.
7. The context lists the most relevant records first.`

const entrySeparator = "\n\n"

// AssemblePrompt serializes ranked results into a bounded context block and
// wraps it with the fixed instruction and the user's question.
// Results are appended in rank order while the block stays within maxChars;
// the first result is always kept. maxChars <= 0 disables the bound.
func AssemblePrompt(results []models.RankedResult, question string, maxChars int) Prompt {
	var b strings.Builder
	included := 0

	for _, entry := range NewContextEntries(results) {
		chunk, err := json.Marshal(entry)
		if err != nil {
			break
		}

		size := len(chunk)
		if included > 0 {
			size += len(entrySeparator)
		}
		if included > 0 && maxChars > 0 && b.Len()+size > maxChars {
			break
		}

		if included > 0 {
			b.WriteString(entrySeparator)
		}
		b.Write(chunk)
		included++
	}

	context := b.String()
	return Prompt{
		Instruction: Instruction,
		Context:     context,
		Input:       "Context:\n" + context + "\n\nUser Question:\n" + question,
		Entries:     included,
	}
}
