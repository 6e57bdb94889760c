package cli

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"study-companion/internal/app"
	"study-companion/internal/domain"
)

// resultFile is the payload the result screen receives: questions, selections and time taken.
type resultFile struct {
	Questions  json.RawMessage    `json:"questions"`
	Selections []domain.Selection `json:"userSelection"`
	TimeTaken  string             `json:"timeTaken"`
}

// NewScoreCmd scores a saved attempt without running the server.
func NewScoreCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <result.json>",
		Short: "Score a saved attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var file resultFile
			if err := json.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			set := domain.QuestionSet{}
			if len(file.Questions) > 0 {
				if set, err = domain.ParseQuestionSet(file.Questions); err != nil {
					return err
				}
			}

			summary := app.ComputeSummary(set, file.Selections)
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(summary)
			}
			timeTaken := file.TimeTaken
			if timeTaken == "" {
				timeTaken = domain.FormatElapsed(0)
			}
			fmt.Fprintf(out, "%d%% mastery - %s\n", summary.MasteryPercent(), summary.Tier.Message())
			fmt.Fprintf(out, "correct: %d  wrong: %d  total: %d  time: %s\n", summary.Correct, summary.Wrong, summary.Total, timeTaken)
			for _, w := range summary.Warnings {
				fmt.Fprintf(out, "warning: question %d recorded answer %q, key says %q\n", w.QuestionNumber, w.Cached, w.Authoritative)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
