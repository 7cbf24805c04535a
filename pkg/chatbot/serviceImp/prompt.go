package serviceImp

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"farmtech/pkg/ai"
	"farmtech/pkg/chatbot/service"
	"farmtech/pkg/weather"
)

var smallTalkRX = regexp.MustCompile(`(?i)^(hi|hello|hey|how are you|who are you|thanks|thank you|good morning|namaste)\b`)

func isSmallTalk(q string) bool { return smallTalkRX.MatchString(strings.TrimSpace(q)) }

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return true
		}
	}
	return false
}

// parseDataURL decodes "data:<mime>;base64,<payload>".
func parseDataURL(s string) (*ai.Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, service.ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, service.ErrInvalidImage
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(mime, "image/") {
		return nil, service.ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, service.ErrInvalidImage
	}
	return &ai.Image{MIME: mime, Data: data}, nil
}

func weatherBlock(city string, w *weather.Current) string {
	if w == nil {
		return fmt.Sprintf("LIVE WEATHER CONTEXT (%s):\n- Temp: Unknown\n- Humidity: Unknown\n- Condition: Clear\n- Rain: 0mm", city)
	}
	return fmt.Sprintf("LIVE WEATHER CONTEXT (%s):\n- Temp: %g°C\n- Humidity: %g%%\n- Condition: %s\n- Rain: %gmm",
		city, w.Temp, w.Humidity, w.Description, w.Rain)
}

const instructions = `You are an expert practical agricultural advisor for farmers in Maharashtra and India.

Note: Give the response only in the language which was used while asking the question.`

const rules = `INSTRUCTIONS:
1. IF AN IMAGE IS ATTACHED: act as a "Crop Doctor". Diagnose any visible plant diseases, pests, or soil issues in the image immediately.
2. If "Retrieved Context" has data, combine it with your visual diagnosis to provide actionable advice.
3. INTEGRATE WEATHER ADVICE: if humidity is above 80%, warn about fungus. If rain is predicted, advise against pesticide spraying.
4. Always reply in the EXACT SAME LANGUAGE the farmer used (Marathi, Hindi, or English).
5. Provide actionable, bulleted steps. No long textbook talk.`

func buildPrompt(city string, w *weather.Current, question, context string) string {
	if strings.TrimSpace(question) == "" {
		question = "Please analyze this image."
	}
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString(weatherBlock(city, w))
	b.WriteString("\n\n")
	b.WriteString(rules)
	b.WriteString("\n\nFarmer Question: ")
	b.WriteString(question)
	b.WriteString("\n\nRetrieved Context:\n")
	b.WriteString(context)
	b.WriteString("\n")
	return b.String()
}
