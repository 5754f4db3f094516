package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/cli"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("")
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("tickets")
	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()

	fields := cfg.Collections[0].Indexes[0].Fields
	gt.Array(t, fields).Length(2).Required()
	gt.Value(t, fields[0].Path).Equal("Status")
	gt.Value(t, fields[1].Path).Equal("CreatedAt")

	gt.Value(t, cli.GetIndexConfig("staging").Collections[0].Name).Equal("staging_tickets")
}

func TestPrintMatch(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	cli.PrintMatch(&buf, &model.MatchResult{
		Answered:        true,
		Answer:          "Επικοινωνήστε με το NOC.",
		MatchedQuestion: "Ξέχασα τον κωδικό",
		Score:           1,
	})
	gt.String(t, buf.String()).Contains("Επικοινωνήστε με το NOC.")
	gt.String(t, buf.String()).Contains("score 1.0000")

	buf.Reset()
	cli.PrintMatch(&buf, &model.MatchResult{})
	gt.String(t, buf.String()).Contains("escalated")
}

func TestRun_Validate(t *testing.T) {
	dir := t.TempDir()
	kb := filepath.Join(dir, "knowledge.csv")
	gt.NoError(t, os.WriteFile(kb, []byte("Question,Answer\nΞέχασα τον κωδικό,Επικοινωνήστε με το NOC.\n,χωρίς ερώτηση\n"), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"helpdesk", "--log-output", filepath.Join(dir, "log"), "validate", "--knowledge-source", kb}, "test")
	gt.NoError(t, err)

	err = cli.Run(context.Background(), []string{"helpdesk", "--log-output", filepath.Join(dir, "log"), "validate", "--knowledge-source", filepath.Join(dir, "missing.csv")}, "test")
	gt.Error(t, err).Is(model.ErrDataSource)
}

func TestRun_Ask(t *testing.T) {
	dir := t.TempDir()
	kb := filepath.Join(dir, "knowledge.csv")
	gt.NoError(t, os.WriteFile(kb, []byte("Question,Answer\nΞέχασα τον κωδικό,Επικοινωνήστε με το NOC.\n"), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"helpdesk", "--log-output", filepath.Join(dir, "log"), "ask", "--knowledge-source", kb, "ξέχασα", "τον", "κωδικό"}, "test")
	gt.NoError(t, err)

	err = cli.Run(context.Background(), []string{"helpdesk", "--log-output", filepath.Join(dir, "log"), "ask", "--knowledge-source", kb}, "test")
	gt.Error(t, err)
}
