// Command schoolctl is the terminal client for the schoolhub API. It keeps
// a local session (token plus user profile) and gates admin subcommands on
// the stored role before calling the server; the server re-checks every
// request regardless.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/client"
)

const defaultServerURL = "http://localhost:5000"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command given")
	}

	sessionPath, err := client.DefaultSessionPath()
	if err != nil {
		return err
	}
	session, err := client.LoadSession(sessionPath)
	if err != nil {
		return err
	}

	serverURL := os.Getenv("SCHOOLHUB_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	api := client.New(serverURL, session)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		return cmdLogin(ctx, api, session, args[1:])
	case "logout":
		return cmdLogout(session)
	case "whoami":
		return cmdWhoami(ctx, api, session)
	case "change-password":
		return cmdChangePassword(ctx, api, session)
	case "users":
		return cmdUsers(ctx, api, session, args[1:])
	case "create-user":
		return cmdCreateUser(ctx, api, session, args[1:])
	case "delete-user":
		return cmdDeleteUser(ctx, api, session, args[1:])
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: schoolctl <command> [flags]

Commands:
  login            Authenticate and store a session
  logout           Discard the stored session
  whoami           Show the authenticated user
  change-password  Rotate the current password
  users            List users (admin only)
  create-user      Provision a new account (admin only)
  delete-user      Remove an account (admin only)

The server URL is taken from SCHOOLHUB_URL (default `+defaultServerURL+`).
`)
}

func cmdLogin(ctx context.Context, api *client.Client, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	fs.Parse(args)

	if *username == "" {
		fmt.Print("Username: ")
		fmt.Scanln(username)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := api.Login(ctx, *username, password)
	if err != nil {
		return err
	}
	if err := session.Save(); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", resp.User.Username, resp.User.Role)
	if resp.NeedsPasswordChange {
		fmt.Println("Your password is temporary. Run `schoolctl change-password` to set your own.")
	}
	return nil
}

func cmdLogout(session *client.Session) error {
	if err := session.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, api *client.Client, session *client.Session) error {
	if !session.Active() {
		return fmt.Errorf("not logged in")
	}

	view, err := api.Me(ctx)
	if err != nil {
		return err
	}
	if err := session.Save(); err != nil {
		return err
	}

	fmt.Printf("%s %s <%s>\n", view.FirstName, view.LastName, view.Username)
	fmt.Printf("  id:   %s\n", view.ID)
	fmt.Printf("  role: %s\n", view.Role)
	if view.Email != nil {
		fmt.Printf("  email: %s\n", *view.Email)
	}

	role, err := session.Role()
	if err != nil {
		return err
	}
	switch role {
	case models.RoleAdmin:
		fmt.Println("  You can manage accounts: users, create-user, delete-user.")
	case models.RoleTeacher:
		fmt.Println("  Teacher tools are available after login.")
	case models.RoleStudent:
		fmt.Println("  Student tools are available after login.")
	case models.RoleParent:
		fmt.Println("  Parent tools are available after login.")
	}
	return nil
}

func cmdChangePassword(ctx context.Context, api *client.Client, session *client.Session) error {
	if !session.Active() {
		return fmt.Errorf("not logged in")
	}

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := api.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	if err := session.Save(); err != nil {
		return err
	}

	fmt.Println("Password changed successfully")
	return nil
}

func cmdUsers(ctx context.Context, api *client.Client, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	roleFlag := fs.String("role", "", "filter by role ("+strings.Join(models.ValidRoleNames(), ", ")+")")
	fs.Parse(args)

	if err := requireAdmin(session); err != nil {
		return err
	}

	var role *models.Role
	if *roleFlag != "" {
		parsed, err := models.ParseRole(*roleFlag)
		if err != nil {
			return err
		}
		role = &parsed
	}

	views, err := api.ListUsers(ctx, role)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tNAME\tLAST LOGIN")
	for _, v := range views {
		lastLogin := "never"
		if v.LastLogin != nil {
			lastLogin = v.LastLogin.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n", v.ID, v.Username, v.Role, v.FirstName, v.LastName, lastLogin)
	}
	return w.Flush()
}

func cmdCreateUser(ctx context.Context, api *client.Client, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	role := fs.String("role", "", "account role ("+strings.Join(models.ValidRoleNames(), ", ")+")")
	email := fs.String("email", "", "contact email (optional)")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	fs.Parse(args)

	if err := requireAdmin(session); err != nil {
		return err
	}

	resp, err := api.CreateUser(ctx, dto.CreateUserRequest{
		Username:  *username,
		Role:      *role,
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	fmt.Printf("  id:       %s\n", resp.User.ID)
	fmt.Printf("  username: %s\n", resp.User.Username)
	fmt.Printf("  role:     %s\n", resp.User.Role)
	fmt.Printf("  temporary password: %s\n", resp.TemporaryPassword)
	fmt.Println("Share the temporary password securely; it is shown only once.")
	return nil
}

func cmdDeleteUser(ctx context.Context, api *client.Client, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	id := fs.String("id", "", "public user id (e.g. TEA4821)")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)

	if err := requireAdmin(session); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	if !*yes {
		fmt.Printf("Delete user %s? [y/N] ", *id)
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := api.DeleteUser(ctx, *id); err != nil {
		return err
	}
	fmt.Println("User deleted successfully")
	return nil
}

// requireAdmin is the local route guard for admin subcommands. It saves a
// round trip on obvious misuse; the server enforces the same rule.
func requireAdmin(session *client.Session) error {
	if !session.Active() {
		return fmt.Errorf("not logged in")
	}
	if !session.AllowedFor(models.RoleAdmin) {
		return fmt.Errorf("this command requires the admin role")
	}
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}
