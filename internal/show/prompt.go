package show

import "github.com/rs/zerolog/log"

// LogPrompter writes prompts to the log.
type LogPrompter struct{}

func (LogPrompter) Prompt(text string) error {
	log.Info().Str("prompt", text).Msg("display")
	return nil
}

// Prompters fans a prompt out to several displays.
type Prompters []Prompter

func (ps Prompters) Prompt(text string) error {
	for _, p := range ps {
		if err := p.Prompt(text); err != nil {
			return err
		}
	}
	return nil
}
