package persona

// Link is a public profile the assistant may point visitors to.
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// Persona describes the portfolio subject the assistant speaks for.
type Persona struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	ShortName   string   `json:"shortName,omitempty" yaml:"shortName"`
	Title       string   `json:"title" yaml:"title"`
	Education   string   `json:"education,omitempty" yaml:"education"`
	Strengths   []string `json:"strengths,omitempty" yaml:"strengths"`
	Links       []Link   `json:"links,omitempty" yaml:"links"`
	Greeting    string   `json:"greeting" yaml:"greeting"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder"`
}

// DisplayName returns the short form used in conversational text.
func (p Persona) DisplayName() string {
	if p.ShortName != "" {
		return p.ShortName
	}
	return p.Name
}

// Seed provides the portfolio owner shipped with the site.
func Seed() []Persona {
	return []Persona{
		{
			ID:        "utkarsh-barad",
			Name:      "Utkarsh Barad",
			ShortName: "Utkarsh",
			Title:     "Python and Full Stack Developer",
			Education: "BSC-CS/IT at Silver Oak University",
			Strengths: []string{
				"Python",
				"web development",
				"keeping up with emerging technologies",
			},
			Links: []Link{
				{Label: "GitHub", URL: "https://github.com/utkarshbhai007"},
				{Label: "LinkedIn", URL: "https://linkedin.com/in/utkarsh-barad"},
			},
			Greeting:    "Hi there! I'm Utkarsh's AI assistant. Ask me anything about his skills, projects, or experience, and I'll do my best to help you!",
			Placeholder: "Ask me anything about Utkarsh...",
		},
	}
}
