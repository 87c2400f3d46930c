package twilio

import (
	"encoding/xml"
	"fmt"
)

const DefaultSay = "What's up Doc?"

type voiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Say     string   `xml:"Say"`
}

// RenderSay returns the TwiML document that speaks text to the callee.
func RenderSay(text string) ([]byte, error) {
	if text == "" {
		text = DefaultSay
	}
	body, err := xml.Marshal(voiceResponse{Say: text})
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
