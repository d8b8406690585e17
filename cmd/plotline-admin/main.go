// ABOUTME: Admin CLI for plotline identity management
// ABOUTME: Creates organizations and users, mints and inspects session tokens

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/plotline/plotline/internal/account"
	"github.com/plotline/plotline/internal/auth"
	"github.com/plotline/plotline/internal/store"
)

// Default TTL for minted tokens: 30 days.
const defaultTokenTTL = 30 * 24 * time.Hour

// Maximum TTL for minted tokens: 365 days.
const maxTokenTTL = 365 * 24 * time.Hour

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "org":
		err = cmdOrg(args)
	case "user":
		err = cmdUser(args)
	case "token":
		err = cmdToken(args)
	case "inspect":
		err = cmdInspect(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("plotline-admin — identity management for plotline")
	fmt.Println()
	fmt.Println("Usage: plotline-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  org create <name> <slug> <contact-email>   Create an organization")
	fmt.Println("  user create <email> <password> [org-slug]  Create a user (admin of the org if given)")
	fmt.Println("  token create <email> [ttl]                 Mint a session token (default 720h, max 8760h)")
	fmt.Println("  inspect <token>                            Decode a token payload (no verification)")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  PLOTLINE_DB          Path to the SQLite database (default: plotline.db)")
	fmt.Println("  PLOTLINE_JWT_SECRET  Signing secret (required for token create)")
}

func openStore() (*store.SQLiteStore, error) {
	path := os.Getenv("PLOTLINE_DB")
	if path == "" {
		path = "plotline.db"
	}
	return store.NewSQLiteStore(path)
}

func newGateway() (*auth.Gateway, error) {
	secret := os.Getenv("PLOTLINE_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("PLOTLINE_JWT_SECRET is required")
	}
	return auth.NewGateway([]byte(secret), auth.Options{})
}

func cmdOrg(args []string) error {
	if len(args) < 1 || args[0] != "create" {
		return fmt.Errorf("usage: org create <name> <slug> <contact-email>")
	}
	if len(args) != 4 {
		return fmt.Errorf("usage: org create <name> <slug> <contact-email>")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	org := &store.Organization{
		ID:           newID(),
		Name:         args[1],
		Slug:         args[2],
		ContactEmail: args[3],
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateOrganization(context.Background(), org); err != nil {
		return err
	}

	color.Green("Created organization %s", org.ID)
	printKV("ID", org.ID, "Name", org.Name, "Slug", org.Slug)
	return nil
}

func cmdUser(args []string) error {
	if len(args) < 3 || args[0] != "create" {
		return fmt.Errorf("usage: user create <email> <password> [org-slug]")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	gw, err := newGateway()
	if err != nil {
		return err
	}

	input := account.SignupInput{
		FirstName: "Admin",
		LastName:  "User",
		Email:     args[1],
		Password:  args[2],
	}
	ctx := context.Background()

	if len(args) == 4 {
		org, err := s.GetOrganizationBySlug(ctx, args[3])
		if err != nil {
			return err
		}
		// Signup creates org+user together; for an existing org, create the
		// user record directly with admin role.
		hasher := account.NewBcryptHasher(0)
		hash, err := hasher.Hash(args[2])
		if err != nil {
			return err
		}
		u := &store.User{
			ID:           newID(),
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Email:        args[1],
			PasswordHash: hash,
			OrgID:        org.ID,
			Role:         string(auth.RoleAdmin),
			Active:       true,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.CreateUser(ctx, u); err != nil {
			return err
		}
		color.Green("Created user %s in organization %s", u.ID, org.Slug)
		return nil
	}

	svc := account.NewService(s, account.NewBcryptHasher(0), gw, defaultTokenTTL)
	res, err := svc.Signup(ctx, input)
	if err != nil {
		return err
	}

	color.Green("Created user %s", res.User.ID)
	fmt.Printf("Session token:\n%s\n", res.Token)
	return nil
}

func cmdToken(args []string) error {
	if len(args) < 2 || args[0] != "create" {
		return fmt.Errorf("usage: token create <email> [ttl]")
	}

	ttl := defaultTokenTTL
	if len(args) == 3 {
		parsed, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("parsing ttl %q: %w", args[2], err)
		}
		if parsed <= 0 || parsed > maxTokenTTL {
			return fmt.Errorf("ttl must be positive and at most %s", maxTokenTTL)
		}
		ttl = parsed
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	gw, err := newGateway()
	if err != nil {
		return err
	}

	user, err := s.FindUserByEmail(context.Background(), args[1])
	if err != nil {
		return err
	}
	if !user.Active {
		return fmt.Errorf("user %s is deactivated", user.ID)
	}

	token, err := gw.IssueSession(user.ID, user.Email, user.OrgID, auth.Role(user.Role), ttl)
	if err != nil {
		return err
	}

	color.Green("Token for %s (expires in %s):", user.Email, ttl)
	fmt.Println(token)
	return nil
}

func cmdInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: inspect <token>")
	}

	// Inspection needs no secret: the payload is decoded without
	// verification and is informational only.
	codec, err := auth.NewTokenCodec([]byte("inspection-only-secret-not-for-signing"))
	if err != nil {
		return err
	}
	claims, ok := codec.DecodeUnsafe(args[0])
	if !ok {
		return fmt.Errorf("token payload is not decodable")
	}

	yellow := color.New(color.FgYellow)
	yellow.Println("Unverified payload:")
	kv := []string{"Subject", claims.Subject, "Email", claims.Email, "Organization", claims.TenantID, "Role", string(claims.Role)}
	if claims.IssuedAt != nil {
		kv = append(kv, "Issued", claims.IssuedAt.Format(time.RFC3339))
	}
	if claims.ExpiresAt != nil {
		kv = append(kv, "Expires", claims.ExpiresAt.Format(time.RFC3339))
	}
	printKV(kv...)
	return nil
}

func newID() string {
	return uuid.New().String()
}

func printKV(pairs ...string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(w, "  %s:\t%s\n", pairs[i], pairs[i+1])
	}
	w.Flush()
}
