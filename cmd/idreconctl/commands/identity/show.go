package identity

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show everything known about one identity",
	Long: `Show the identity card: every directory account, MFA enrollment and the
HR record attributed to one person.

Examples:
  # Show by employee ID
  idreconctl identity show 8f14e45f-ceea-467f-a8f5-4a1c2b3d4e5f

  # Show an account without employee ID
  idreconctl identity show login:svc_backup`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	card, err := client.Identity(args[0])
	if err != nil {
		return fmt.Errorf("failed to get identity: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, card, func() error {
		if card.IsEmpty() {
			fmt.Printf("No records found for %s.\n", args[0])
			return nil
		}
		return printCard(os.Stdout, card)
	})
}

func printCard(w io.Writer, card *model.IdentityCard) error {
	if err := output.SimpleTable(w, [][2]string{
		{"Key", card.Key},
		{"Employee ID", card.EmployeeID},
		{"Name", card.Name},
		{"Logins", strings.Join(card.Logins, ", ")},
		{"Emails", strings.Join(card.Emails(), ", ")},
	}); err != nil {
		return err
	}

	for i := range card.Directory {
		a := &card.Directory[i]
		_, _ = fmt.Fprintf(w, "\nDirectory account %s (%s)\n", a.Login, a.DomainLabel)
		if err := output.SimpleTable(w, [][2]string{
			{"Enabled", a.EnabledLabel},
			{"Type", a.AccountType},
			{"Display name", a.DisplayName},
			{"Email", a.Email},
			{"Phone", a.Phone},
			{"Mobile", a.Mobile},
			{"Title", a.Title},
			{"Department", a.Department},
			{"Company", a.Company},
			{"Manager", a.ManagerName},
			{"DN", a.DistinguishedName},
			{"Password last set", normalize.FormatDateTime(a.PasswordLastSet)},
			{"Account expires", a.AccountExpiresText()},
			{"Last logon", normalize.FormatDateTime(a.LastLogon)},
			{"Groups", output.Count(len(a.Groups))},
		}); err != nil {
			return err
		}
	}

	for i := range card.Mfa {
		m := &card.Mfa[i]
		_, _ = fmt.Fprintf(w, "\nMFA enrollment %s\n", m.Identity)
		if err := output.SimpleTable(w, [][2]string{
			{"Enrolled", m.IsEnrolled.Label()},
			{"Status", m.Status},
			{"Name", m.Name},
			{"Email", m.Email},
			{"Phones", m.Phones},
			{"Authenticators", m.Authenticators},
			{"Created", m.CreatedAt},
			{"Last login", m.LastLogin},
		}); err != nil {
			return err
		}
	}

	if h := card.Hr; h != nil {
		_, _ = fmt.Fprintln(w, "\nHR record")
		if err := output.SimpleTable(w, [][2]string{
			{"Name", h.Name},
			{"Email", h.Email},
			{"Phone", h.Phone},
			{"Unit", h.Unit},
			{"Hub", h.Hub},
			{"Status", h.EmploymentStatus},
			{"Unit manager", h.UnitManager},
			{"Work format", h.WorkFormat},
			{"HR BP", h.HRBusinessPartner},
		}); err != nil {
			return err
		}
	}
	return nil
}
