package cmd

import (
	"fmt"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
)

var (
	resetReq    services.ResetPasswordRequest
	fixApply    bool
	tokenEmail  string
	tokenTTL    time.Duration
	tokenClaims bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Account and configuration patches",
}

var adminResetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password on a user",
	Long: `Set a new bcrypt password on the user with --email.

Without --password a random one is generated and printed once.
With --create the user is created when it does not exist.`,
	RunE: runAdminResetPassword,
}

var adminFixGlobalConfigCmd = &cobra.Command{
	Use:   "fix-global-config",
	Short: "Bring the GlobalConfig table back to one valid row",
	Long: `Plan the writes that leave exactly one GlobalConfig row: create it with
defaults when missing, delete all but the newest, and fill invalid fields.

The plan is only printed unless --apply is set.`,
	RunE: runAdminFixGlobalConfig,
}

var adminTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for manual API calls",
	RunE:  runAdminToken,
}

func init() {
	f := adminResetPasswordCmd.Flags()
	f.StringVar(&resetReq.Email, "email", "", "User email (required)")
	f.StringVar(&resetReq.Password, "password", "", "New password (generated when empty)")
	f.BoolVar(&resetReq.Create, "create", false, "Create the user when missing")
	f.StringVar(&resetReq.Name, "name", "", "Name of a created user")
	f.StringVar(&resetReq.Role, "role", models.RoleAdmin, "Role of a created user")
	f.StringVar(&resetReq.CompanyID, "company", "", "Company of a created user")
	adminResetPasswordCmd.MarkFlagRequired("email")

	adminFixGlobalConfigCmd.Flags().BoolVar(&fixApply, "apply", false, "Write the changes")

	adminTokenCmd.Flags().StringVar(&tokenEmail, "email", "", "User email (required)")
	adminTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", services.DefaultTokenTTL, "Token lifetime")
	adminTokenCmd.Flags().BoolVar(&tokenClaims, "claims", false, "Print the decoded claims as well")
	adminTokenCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminResetPasswordCmd)
	adminCmd.AddCommand(adminFixGlobalConfigCmd)
	adminCmd.AddCommand(adminTokenCmd)
}

func runAdminResetPassword(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	admin := services.NewAdminService(repo, cfg.JWT.Secret)
	result, err := admin.ResetPassword(cmd.Context(), resetReq)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Created {
		fmt.Fprintf(out, "Created %s user %s\n", result.User.Role, result.User.Email)
	} else {
		fmt.Fprintf(out, "Password updated for %s\n", result.User.Email)
	}
	if result.Generated {
		fmt.Fprintf(out, "Generated password: %s\n", result.Password)
	}
	return nil
}

func runAdminFixGlobalConfig(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	plan, err := services.NewGlobalConfigService(repo).Fix(cmd.Context(), fixApply)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if plan.Empty() {
		fmt.Fprintln(out, "GlobalConfig is healthy, nothing to do")
		return nil
	}

	writer, err := dumpWriter()
	if err != nil {
		return err
	}
	if err := writer.Print(out, plan); err != nil {
		return err
	}
	if !plan.Applied {
		fmt.Fprintln(out, "Dry run, re-run with --apply to write these changes")
	}
	return nil
}

func runAdminToken(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	admin := services.NewAdminService(repo, cfg.JWT.Secret)
	token, user, err := admin.MintToken(cmd.Context(), tokenEmail, tokenTTL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	if tokenClaims {
		claims, err := admin.VerifyToken(token)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "user_id=%s email=%s role=%s expires=%s\n",
			claims.UserID, user.Email, claims.Role, claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
