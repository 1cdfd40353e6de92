package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/client/tokencache"
)

type authClient struct {
	serverURL *string
}

func newAuthCmd(serverURL *string) *cobra.Command {
	a := &authClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}
	cmd.AddCommand(&cobra.Command{Use: "login", Short: "Login and cache the session token", RunE: a.login})
	cmd.AddCommand(&cobra.Command{Use: "logout", Short: "Destroy the session", RunE: a.logout})
	cmd.AddCommand(&cobra.Command{Use: "whoami", Short: "Show the current user", RunE: a.whoami})
	return cmd
}

func (a *authClient) login(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Fprint(cmd.OutOrStdout(), "Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	body, _ := json.Marshal(map[string]string{"username": username, "password": string(password)})
	resp, err := http.Post(*a.serverURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("login failed: %s", resp.Status)
	}
	var result struct {
		Token string `json:"token"`
		User  struct {
			IsDefaultAccount bool `json:"isDefaultAccount"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if err := tokencache.Save(result.Token); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	if result.User.IsDefaultAccount {
		fmt.Fprintln(cmd.OutOrStdout(), "This is the default account; create a personal one with: oar account create")
	}
	return nil
}

func (a *authClient) logout(cmd *cobra.Command, args []string) error {
	token, err := tokencache.Load()
	if err == nil && token != "" {
		req, _ := http.NewRequest("POST", *a.serverURL+"/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
		}
	}
	if err := tokencache.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func (a *authClient) whoami(cmd *cobra.Command, args []string) error {
	token, err := tokencache.Load()
	if err != nil {
		return err
	}
	req, _ := http.NewRequest("GET", *a.serverURL+"/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func promptPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	return pass, err
}

func defaultServerURL() string {
	if v, ok := os.LookupEnv("OAR_SERVER_URL"); ok && v != "" {
		return v
	}
	return "http://localhost:8080"
}
