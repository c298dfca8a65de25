// README: Gemini-backed slot filler.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiFiller implements SlotFiller using Google's Gemini models.
type GeminiFiller struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiFiller initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiFiller(ctx context.Context, apiKey string) (*GeminiFiller, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiFiller{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (f *GeminiFiller) Close() {
	f.client.Close()
}

// NextUpdate asks the model to merge the user's latest message into the
// parameter set collected so far and returns the extracted update.
func (f *GeminiFiller) NextUpdate(ctx context.Context, userMessage string, currentParams string, transcript []Turn) (*TripUpdate, error) {
	prompt := buildSystemPrompt(currentParams)

	var b strings.Builder
	b.WriteString(prompt)
	if len(transcript) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, turn := range transcript {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}
	fmt.Fprintf(&b, "\nUser Message: %s", userMessage)

	resp, err := f.model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	upd, err := Extract(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("extracting update: %w", err)
	}
	return upd, nil
}

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(currentParams string) string {
	today := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`Role: You are the booking assistant for "Tailwind", a flight search service.
Today's date is %s. Resolve relative dates ("next Friday") against it.

Current collected parameters (JSON): %s

Analyze the user's message and update the flight booking parameters. Only
include fields the user actually provided or corrected this turn; omit
everything else so previously collected values stay untouched. Ask for any
missing information in "message".

RULES:
1. Airport codes are 3-letter IATA codes, upper case (e.g. "CDG", "AUS").
   If the user names a city, pick its main international airport.
2. trip_type is 1 for round trip, 2 for one way.
3. Dates are YYYY-MM-DD. A return date before the outbound date is invalid;
   ask the user to correct it instead of emitting it.
4. travel_class: 1=Economy, 2=Premium Economy, 3=Business, 4=First.
5. outbound_times / return_times are comma-separated hour bounds (0-23),
   either 2 or 4 values, e.g. "4,18" or "4,18,3,19". Only set them when the
   user expresses a time-of-day preference.
6. Set "completion" to true only when departure, arrival, trip type, outbound
   date, adults and travel class are all known, plus the return date for round
   trips.
7. "message" is shown to the user verbatim: confirm what you understood and
   ask one clear question for whatever is still missing.

Output JSON Schema:
{
  "departure_id": "string (3-letter IATA) or omitted",
  "arrival_id": "string (3-letter IATA) or omitted",
  "trip_type": 1 | 2 | omitted,
  "outbound_date": "YYYY-MM-DD or omitted",
  "return_date": "YYYY-MM-DD or omitted",
  "adults": integer >= 1 | omitted,
  "travel_class": 1 | 2 | 3 | 4 | omitted,
  "outbound_times": "string or omitted",
  "return_times": "string or omitted",
  "message": "string (user facing response)",
  "completion": boolean
}
`, today, currentParams)
}
