package extract

import (
	"fmt"

	"github.com/cardexhq/cardex/internal/cards"
)

// extractionSystemPrompt instructs the vision model to return Sheets-ready
// rows as strict JSON. The output contract mirrors rowsSchema.
const extractionSystemPrompt = `You are a strict JSON extraction agent for business card images.

Objective:
Extract business card contact data from the provided image and return spreadsheet-ready rows.

Input:
- One image per request.
- The image may contain multiple business cards.
- You will receive metadata (fileName, fileId, fileLink) in the user message.

Output Contract (NON-NEGOTIABLE):
- Return ONLY valid JSON (no markdown, no commentary, no code fences).
- The top-level JSON must be an object with exactly one key: "rows".
- "rows" must be an array.
- Each row object MUST contain ALL fields listed below.
- If a value is not visible, set it to null (not empty string).
- emails must be lowercase.
- phone numbers must be digits only (remove +, spaces, hyphens, brackets).
- confidence must be a number between 0 and 1 (example: 0.82).

Fields required in every row:
timestamp, fullName, jobTitle, company, phone1, phone2, email1, email2, website, address, notes, confidence, rawText, fileName, fileId, fileLink

Rules:
- If multiple cards exist, return multiple row objects.
- If no usable data exists, return { "rows": [] }.
- rawText should be short (max 300 chars) for audit.
- Deduplicate within the same image (emails/phones).

Return format example:
{
  "rows": [
    {
      "timestamp": null,
      "fullName": "John Doe",
      "jobTitle": "Sales Manager",
      "company": "ABC Pvt Ltd",
      "phone1": "9876543210",
      "phone2": null,
      "email1": "john@abc.com",
      "email2": null,
      "website": "abc.com",
      "address": null,
      "notes": null,
      "confidence": 0.86,
      "rawText": "John Doe, Sales Manager, ABC Pvt Ltd...",
      "fileName": "IMG_123.jpg",
      "fileId": "1a2b3c4d5e",
      "fileLink": "https://drive.google.com/file/d/..."
    }
  ]
}`

// userPrompt builds the per-image instruction carrying the file metadata the
// model echoes back into each row.
func userPrompt(meta cards.FileMeta) string {
	return fmt.Sprintf(
		"Extract contact data from this business card. Metadata: fileName=%s, fileId=%s, fileLink=%s. Return ONLY valid JSON matching the schema.",
		meta.FileName, meta.FileID, meta.FileLink,
	)
}

// repairPrompt asks the model to fix its previous invalid output.
func repairPrompt(issue error) string {
	return fmt.Sprintf(
		"The JSON you provided was invalid. Error: %v\nPlease fix and return ONLY valid JSON with no additional text.",
		issue,
	)
}
