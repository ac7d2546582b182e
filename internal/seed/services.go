// Package seed holds the embedded starter catalogue and knowledge base the
// portal ships with, and applies them to fresh databases.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed services.json
var servicesJSON []byte

// genericMinistries are the remaining ministries beyond the fully detailed
// ones in services.json. Each gets a single "General Services" subservice.
var genericMinistries = []struct {
	ID    string
	Title string
}{
	{"ministry_health", "Ministry of Health"},
	{"ministry_transport", "Ministry of Transport"},
	{"ministry_imm", "Ministry of Immigration"},
	{"ministry_foreign", "Ministry of Foreign Affairs"},
	{"ministry_finance", "Ministry of Finance"},
	{"ministry_labour", "Ministry of Labour"},
	{"ministry_public", "Ministry of Public Administration"},
	{"ministry_justice", "Ministry of Justice"},
	{"ministry_housing", "Ministry of Housing"},
	{"ministry_agri", "Ministry of Agriculture"},
	{"ministry_youth", "Ministry of Youth Affairs"},
	{"ministry_defence", "Ministry of Defence"},
	{"ministry_tourism", "Ministry of Tourism"},
	{"ministry_trade", "Ministry of Industry & Trade"},
	{"ministry_energy", "Ministry of Power & Energy"},
	{"ministry_water", "Ministry of Water Supply"},
	{"ministry_env", "Ministry of Environment"},
	{"ministry_culture", "Ministry of Culture"},
}

type i18n struct {
	EN string `json:"en"`
	SI string `json:"si"`
	TA string `json:"ta"`
}

type question struct {
	Q            i18n     `json:"q"`
	Answer       i18n     `json:"answer"`
	Downloads    []string `json:"downloads"`
	Location     string   `json:"location"`
	Instructions string   `json:"instructions"`
}

type subservice struct {
	ID        string     `json:"id"`
	Name      i18n       `json:"name"`
	Questions []question `json:"questions"`
}

type ministry struct {
	ID          string       `json:"id"`
	Name        i18n         `json:"name"`
	Subservices []subservice `json:"subservices"`
}

// Services returns the full starter catalogue: the detailed embedded
// ministries followed by the generic ones.
func Services() ([]json.RawMessage, error) {
	var detailed []json.RawMessage
	if err := json.Unmarshal(servicesJSON, &detailed); err != nil {
		return nil, fmt.Errorf("parsing embedded services: %w", err)
	}

	out := make([]json.RawMessage, 0, len(detailed)+len(genericMinistries))
	out = append(out, detailed...)

	for _, m := range genericMinistries {
		payload, err := json.Marshal(ministry{
			ID:   m.ID,
			Name: i18n{EN: m.Title, SI: m.Title, TA: m.Title},
			Subservices: []subservice{
				{
					ID:   "general",
					Name: i18n{EN: "General Services", SI: "සාමාන්ය සේවාවන්", TA: "பொது சேவைகள்"},
					Questions: []question{
						{
							Q: i18n{
								EN: "What services are offered?",
								SI: "ලබාදීමට ඇති සේවාවන් මොනවාද?",
								TA: "எந்த சேவைகள் வழங்கப்படுகின்றன?",
							},
							Answer: i18n{
								EN: "Please check the service list on the portal.",
								SI: "පෝර්ටලයහි සේවා ලැයිස්තුව බලන්න.",
								TA: "போர்ட்டலில் சேவை பட்டியலைப் பார்க்கவும்.",
							},
							Downloads:    []string{},
							Instructions: "Use the contact details on the portal for more information.",
						},
					},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("building ministry %q: %w", m.ID, err)
		}
		out = append(out, payload)
	}

	return out, nil
}
