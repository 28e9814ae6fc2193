package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stocks/pkg/clients/stocks"
)

func newRootCmd() *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:   "stockctl",
		Short: "Command line client for the stock record service",
		Long: `stockctl talks to the stock record HTTP service.

Log in once to learn your user code, then use it with list, create,
update and delete:

  stockctl login -u user001 -p pass001
  stockctl list 48273
  stockctl update 48273 --set close_price=101.5`,
		SilenceUsage: true,
	}

	defaultServer := os.Getenv("STOCKS_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVarP(&server, "server", "s", defaultServer, "base URL of the stock service")

	client := func() *stocks.Client { return stocks.NewClient(server) }

	root.AddCommand(
		newLoginCmd(client),
		newListCmd(client),
		newCreateCmd(client),
		newUpdateCmd(client),
		newDeleteCmd(client),
	)
	return root
}

func newLoginCmd(client func() *stocks.Client) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print the user code for a username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newListCmd(client func() *stocks.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list USER_CODE",
		Short: "List the records of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newCreateCmd(client func() *stocks.Client) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create USER_CODE",
		Short: "Create a record from a JSON object (file or stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			dec := json.NewDecoder(in)
			dec.UseNumber()
			var fields map[string]any
			if err := dec.Decode(&fields); err != nil {
				return fmt.Errorf("read record: %w", err)
			}

			resp, err := client().Create(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file holding the record fields")
	return cmd
}

func newUpdateCmd(client func() *stocks.Client) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update USER_CODE",
		Short: "Patch every record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			resp, err := client().Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to apply (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newDeleteCmd(client func() *stocks.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_CODE",
		Short: "Delete every record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

// parseAssignments turns field=value pairs into a patch. Values that parse
// as JSON (numbers, null, quoted strings) keep their JSON type; anything
// else is sent as a plain string.
func parseAssignments(sets []string) (map[string]any, error) {
	patch := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q must look like field=value", s)
		}

		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil || dec.More() {
			value = raw
		}
		patch[key] = value
	}
	return patch, nil
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}
