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

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/client/tokencache"
)

func newAccountCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "account", Short: "Account management"}
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a new account (requires an active session)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokencache.Load()
			if err != nil {
				return err
			}
			reader := bufio.NewReader(os.Stdin)
			fmt.Fprint(cmd.OutOrStdout(), "Username: ")
			username, _ := reader.ReadString('\n')
			username = strings.TrimSpace(username)
			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			body, _ := json.Marshal(map[string]string{"username": username, "password": string(password)})
			req, _ := http.NewRequest("POST", *serverURL+"/create-account", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				var e struct {
					Error string `json:"error"`
				}
				_ = json.NewDecoder(resp.Body).Decode(&e)
				if e.Error != "" {
					return fmt.Errorf("create account failed: %s", e.Error)
				}
				return fmt.Errorf("create account failed: %s", resp.Status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created")
			return nil
		},
	})
	return cmd
}
