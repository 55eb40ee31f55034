package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("LOANTRACK_URL", "http://localhost:8080")
		out     = envOr("LOANTRACK_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "loantrackctl",
		Short: "CLI for the loan verification workflow API",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "API base URL (env LOANTRACK_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "output format: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.OutFormat = out
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check API and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/health/db", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status != http.StatusOK {
				return fmt.Errorf("unhealthy: status=%d", status)
			}
			return nil
		},
	}

	// orgs
	orgsCmd := &cobra.Command{Use: "orgs", Short: "Organization operations"}

	orgsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			skip, _ := cmd.Flags().GetInt("skip")
			status, body, err := cl.do("GET", fmt.Sprintf("/organizations/?skip=%d&limit=%d", skip, limit), nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	orgsListCmd.Flags().Int("limit", 100, "max results")
	orgsListCmd.Flags().Int("skip", 0, "offset")

	orgsCreateCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgType, _ := cmd.Flags().GetString("type")
			payload := map[string]any{"name": args[0]}
			if orgType != "" {
				payload["type"] = orgType
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("POST", "/organizations/", b)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	orgsCreateCmd.Flags().String("type", "", "organization type (government|ngo|bank)")
	orgsCmd.AddCommand(orgsListCmd, orgsCreateCmd)

	// schemes
	schemesCmd := &cobra.Command{Use: "schemes", Short: "Scheme operations"}

	schemesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List schemes",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, _ := cmd.Flags().GetString("org")
			q := url.Values{}
			if orgID != "" {
				q.Set("org_id", orgID)
			}
			path := "/schemes/"
			if enc := q.Encode(); enc != "" {
				path += "?" + enc
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	schemesListCmd.Flags().String("org", "", "filter by organization id")

	schemesGetCmd := &cobra.Command{
		Use:   "get <code>",
		Short: "Look up a scheme by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/schemes/code/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	schemesCmd.AddCommand(schemesListCmd, schemesGetCmd)

	// users
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	usersListCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if v, _ := cmd.Flags().GetString("org"); v != "" {
				q.Set("org_id", v)
			}
			if v, _ := cmd.Flags().GetString("role"); v != "" {
				q.Set("role", v)
			}
			if v, _ := cmd.Flags().GetString("status"); v != "" {
				q.Set("status", v)
			}
			path := "/users/"
			if enc := q.Encode(); enc != "" {
				path += "?" + enc
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	usersListCmd.Flags().String("org", "", "filter by organization id")
	usersListCmd.Flags().String("role", "", "filter by role (beneficiary|officer|admin)")
	usersListCmd.Flags().String("status", "", "filter by status")

	usersGetCmd := &cobra.Command{
		Use:   "get <mobile>",
		Short: "Look up a user by mobile number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/users/mobile/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	usersCmd.AddCommand(usersListCmd, usersGetCmd)

	root.AddCommand(pingCmd, orgsCmd, schemesCmd, usersCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
