package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var file string
	var bonds bool

	cmd := &cobra.Command{
		Use:   "resolve [notation|-]",
		Short: "Resolve a notation into an atom-level molecule",
		Long: "Resolve parses the notation, expands every fragment instance and bonds\n" +
			"the instances along the meta edges. Pass - to read the notation from stdin.",
		Example: "  cgsmiles resolve '{[#PEO]|3}.{#PEO=[$]COC[$]}'\n" +
			"  echo '{[#A]}.{#A=C}' | cgsmiles resolve - -o json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotation(cmd, args, file, func(ctx context.Context, b Backend, notation string) (interface{}, error) {
				resp, err := b.Resolve(ctx, notation)
				if err != nil {
					return nil, err
				}
				return &resolveView{ResolveResponse: resp, showBonds: bonds}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the notation from a file")
	cmd.Flags().BoolVar(&bonds, "bonds", false, "tabulate bonds instead of atoms in table output")
	return cmd
}

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [notation|-]",
		Short: "Check a notation without bonding it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotation(cmd, args, file, func(ctx context.Context, b Backend, notation string) (interface{}, error) {
				resp, err := b.Validate(ctx, notation)
				if err != nil {
					return nil, err
				}
				return (*validateView)(resp), nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the notation from a file")
	return cmd
}

// NewFragmentsCmd creates the fragments command.
func NewFragmentsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "fragments [notation|-]",
		Short: "List the parsed fragment dictionary of a notation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotation(cmd, args, file, func(ctx context.Context, b Backend, notation string) (interface{}, error) {
				templates, err := b.Fragments(ctx, notation)
				if err != nil {
					return nil, err
				}
				return fragmentsView(templates), nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the notation from a file")
	return cmd
}

type notationFunc func(ctx context.Context, b Backend, notation string) (interface{}, error)

func runNotation(cmd *cobra.Command, args []string, file string, fn notationFunc) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	notation, err := readNotation(cmd, args, file)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if cliCtx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliCtx.Timeout)
		defer cancel()
	}

	cliCtx.Logger.Debug("running command",
		logging.String("command", cmd.Name()),
		logging.Int("notation_length", len(notation)),
	)
	result, err := fn(ctx, cliCtx.Backend, notation)
	if err != nil {
		return err
	}
	return PrintResult(cmd, result)
}

// readNotation takes the notation from --file, stdin ("-") or the argument.
func readNotation(cmd *cobra.Command, args []string, file string) (string, error) {
	var raw string
	switch {
	case file != "" && len(args) > 0:
		return "", errors.InvalidParam("pass either a notation argument or --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read notation file")
		}
		raw = string(data)
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read notation from stdin")
		}
		raw = string(data)
	case len(args) == 1:
		raw = args[0]
	}

	notation := strings.TrimSpace(raw)
	if notation == "" {
		return "", errors.InvalidParam("notation is required")
	}
	return notation, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

// resolveView renders a ResolveResponse for text and table output.
type resolveView struct {
	*molecule.ResolveResponse
	showBonds bool
}

func (v *resolveView) Payload() interface{} { return v.ResolveResponse }

func (v *resolveView) fragmentOf(node int) string {
	if node >= 0 && node < len(v.Meta.Nodes) {
		return v.Meta.Nodes[node].Fragment
	}
	return ""
}

func (v *resolveView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "formula:   %s\n", v.Molecule.Formula)
	fmt.Fprintf(&sb, "atoms:     %d\n", len(v.Molecule.Atoms))
	fmt.Fprintf(&sb, "bonds:     %d\n", len(v.Molecule.Bonds))
	fmt.Fprintf(&sb, "instances: %d\n", len(v.Meta.Nodes))
	for _, n := range v.Meta.Nodes {
		fmt.Fprintf(&sb, "  %d %s atoms=%s\n", n.ID, n.Fragment, joinInts(n.AtomIDs))
	}
	if len(v.Unconsumed) > 0 {
		sb.WriteString("unconsumed:\n")
		for _, l := range v.Unconsumed {
			fmt.Fprintf(&sb, "  node %d atom %d: %s\n", l.MetaNode, l.Atom, strings.Join(l.Descriptors, " "))
		}
	}
	return sb.String()
}

func (v *resolveView) TableHeaders() []string {
	if v.showBonds {
		return []string{"A", "B", "ORDER", "AROMATIC"}
	}
	return []string{"ID", "ELEMENT", "CHARGE", "NODE", "FRAGMENT", "BONDING"}
}

func (v *resolveView) TableRows() [][]string {
	if v.showBonds {
		rows := make([][]string, 0, len(v.Molecule.Bonds))
		for _, b := range v.Molecule.Bonds {
			rows = append(rows, []string{
				strconv.Itoa(b.A), strconv.Itoa(b.B), strconv.Itoa(b.Order), strconv.FormatBool(b.Aromatic),
			})
		}
		return rows
	}
	rows := make([][]string, 0, len(v.Molecule.Atoms))
	for _, a := range v.Molecule.Atoms {
		rows = append(rows, []string{
			strconv.Itoa(a.ID),
			a.Element,
			strconv.Itoa(a.Charge),
			strconv.Itoa(a.MetaNode),
			v.fragmentOf(a.MetaNode),
			strings.Join(a.Bonding, " "),
		})
	}
	return rows
}

type validateView molecule.ValidateResponse

func (v *validateView) Payload() interface{} { return (*molecule.ValidateResponse)(v) }

func (v *validateView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "valid:     %t\n", v.Valid)
	fmt.Fprintf(&sb, "instances: %s\n", strings.Join(v.MetaNodes, " "))
	edges := make([]string, len(v.MetaEdges))
	for i, e := range v.MetaEdges {
		edges[i] = fmt.Sprintf("%d-%d", e[0], e[1])
	}
	fmt.Fprintf(&sb, "edges:     %s\n", strings.Join(edges, " "))
	fmt.Fprintf(&sb, "fragments: %s\n", strings.Join(v.Fragments, " "))
	return sb.String()
}

func (v *validateView) TableHeaders() []string { return []string{"NODE", "FRAGMENT"} }

func (v *validateView) TableRows() [][]string {
	rows := make([][]string, len(v.MetaNodes))
	for i, name := range v.MetaNodes {
		rows[i] = []string{strconv.Itoa(i), name}
	}
	return rows
}

type fragmentsView []molecule.TemplateDTO

func (v fragmentsView) Payload() interface{} { return []molecule.TemplateDTO(v) }

func (v fragmentsView) String() string {
	var sb strings.Builder
	for _, t := range v {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", t.Name, t.Formula, t.SMILES)
	}
	return sb.String()
}

func (v fragmentsView) TableHeaders() []string {
	return []string{"NAME", "FORMULA", "ATOMS", "BONDS", "DESCRIPTORS", "SMILES"}
}

func (v fragmentsView) TableRows() [][]string {
	rows := make([][]string, len(v))
	for i, t := range v {
		descs := make([]string, 0, len(t.Descriptors))
		for _, d := range t.Descriptors {
			descs = append(descs, fmt.Sprintf("%d:%s", d.Atom, strings.Join(d.Descriptors, "")))
		}
		rows[i] = []string{
			t.Name, t.Formula, strconv.Itoa(t.Atoms), strconv.Itoa(t.Bonds), strings.Join(descs, " "), t.SMILES,
		}
	}
	return rows
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
