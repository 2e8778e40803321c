package cli

import (
	"fmt"

	"github.com/tomjnixon/alot/dataprotection"
	"github.com/tomjnixon/alot/pgptrust"
)

// KeysCmd is the parent for keys commands
type KeysCmd struct {
	List   KeysListCmd   `cmd:"" help:"list keys"`
	Show   KeysShowCmd   `cmd:"" help:"print key information"`
	Export KeysExportCmd `cmd:"" help:"export public key"`
}

// KeysListCmd prints keys
type KeysListCmd struct {
	Hint string `help:"specifies fingerprint or user ID substring (optional)"`
}

// Run the command
func (a *KeysListCmd) Run(ctx *Cli) error {
	keys, err := ctx.Trust().ListKeys(a.Hint)
	if err != nil {
		return err
	}

	out := ctx.Writer()
	if len(keys) == 0 {
		if a.Hint != "" {
			fmt.Fprintf(out, "no keys found with hint: %s\n", a.Hint)
		} else {
			fmt.Fprintln(out, "no keys found")
		}
		return nil
	}

	for i, key := range keys {
		fmt.Fprintf(out, "[%d]\n", i)
		fmt.Fprintf(out, "  Fingerprint: %s\n", key.Fingerprint)
		for _, id := range key.Identities {
			fmt.Fprintf(out, "  UID: %s <%s> [%s]\n", id.Name, id.Email, id.Trust)
		}
		flags := ""
		if key.CanEncrypt {
			flags += "e"
		}
		if key.CanSign {
			flags += "s"
		}
		if key.HasSecret {
			flags += "S"
		}
		if flags != "" {
			fmt.Fprintf(out, "  Flags: %s\n", flags)
		}
		switch {
		case key.Revoked:
			fmt.Fprintln(out, "  State: revoked")
		case key.Expired:
			fmt.Fprintln(out, "  State: expired")
		case key.Invalid:
			fmt.Fprintln(out, "  State: invalid")
		}
	}
	return nil
}

// KeysShowCmd prints the key resolved from a term
type KeysShowCmd struct {
	Term    string `kong:"arg" required:"" help:"fingerprint, key ID or user ID"`
	Encrypt bool   `help:"require encryption capability"`
	Sign    bool   `help:"require signing capability"`
	Trusted bool   `help:"require a trusted identity matching the term"`
}

// Run the command
func (a *KeysShowCmd) Run(ctx *Cli) error {
	policy := pgptrust.Policy{
		RequireEncrypt: a.Encrypt,
		RequireSign:    a.Sign,
	}
	key, err := ctx.Trust().GetKey(a.Term, policy, a.Trusted)
	if err != nil {
		return err
	}
	return ctx.WriteJSON(key)
}

// KeysExportCmd exports an armored public key
type KeysExportCmd struct {
	Term       string `kong:"arg" required:"" help:"fingerprint, key ID or user ID"`
	Passphrase string `help:"protect the backup with a passphrase"`
}

// Run the command
func (a *KeysExportCmd) Run(ctx *Cli) error {
	var protector dataprotection.Provider
	if a.Passphrase != "" {
		var err error
		protector, err = dataprotection.NewSymmetric([]byte(a.Passphrase))
		if err != nil {
			return err
		}
	}

	data, err := ctx.Trust().ExportKey(ctx.Context(), a.Term, protector)
	if err != nil {
		return err
	}

	out := ctx.Writer()
	if protector != nil {
		fmt.Fprintln(out, string(data))
		return nil
	}
	_, err = out.Write(data)
	return err
}
