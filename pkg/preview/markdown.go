// Package preview renders an action document the way a client would list
// it: a title card followed by its linked actions and their inputs.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/actionspec/pkg/schema"
)

// MaxLabelWidth bounds label cells in the links table.
const MaxLabelWidth = 32

// Markdown renders a as a markdown document.
func Markdown(a *schema.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	if a.Icon != "" {
		fmt.Fprintf(&b, "![icon](%s)\n\n", a.Icon)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Description)
	}
	fmt.Fprintf(&b, "**%s**\n\n", a.Label)

	if len(a.Links) > 0 {
		b.WriteString("| # | Type | Label | Details |\n|---|------|-------|---------|\n")
		for i, l := range a.Links {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, l.Type, cell(Truncate(l.Label(), MaxLabelWidth)), cell(details(l)))
		}
		b.WriteString("\n")
	}

	for i, l := range a.Links {
		params := inputs(l)
		if len(params) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, l.Label())
		for _, p := range params {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	if a.Error != nil {
		fmt.Fprintf(&b, "> %s\n", a.Error.Message)
	}
	return b.String()
}

// Render converts markdown to styled terminal output wrapped at width.
// It falls back to the raw markdown if rendering fails.
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Truncate shortens s to at most width terminal cells.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func details(l schema.LinkedAction) string {
	switch l.Type {
	case schema.LinkedLink:
		return l.Link.Href
	case schema.LinkedReference:
		return "→ " + l.Reference.CID
	case schema.LinkedTx:
		return fmt.Sprintf("chain %d · %s", l.Tx.ChainID, l.Tx.TxData.ABI)
	case schema.LinkedTxMulti:
		abis := make([]string, len(l.TxMulti.TxData))
		for i, c := range l.TxMulti.TxData {
			abis[i] = c.ABI
		}
		return fmt.Sprintf("chain %d · %s · %s", l.TxMulti.ChainID, l.TxMulti.DisplayConfig.DisplayMode, strings.Join(abis, ", "))
	case schema.LinkedTransfer:
		value := l.Transfer.Value.Wei + " wei"
		if l.Transfer.Value.Parameter != nil {
			value = "value from " + describe(*l.Transfer.Value.Parameter)
		}
		if l.Transfer.ChainID != nil {
			return fmt.Sprintf("chain %d · %s", *l.Transfer.ChainID, value)
		}
		return value
	}
	return ""
}

// inputs lists the parameters a user is asked to fill in.
func inputs(l schema.LinkedAction) []string {
	var out []string
	var visit func(p schema.Parameter)
	visit = func(p schema.Parameter) {
		if p.Type.IsInput() && p.Scope == schema.ScopeUser {
			out = append(out, describe(p))
		}
		for _, v := range p.Values {
			visit(v)
		}
		for _, v := range p.Parameters {
			visit(v)
		}
	}
	switch l.Type {
	case schema.LinkedTx:
		for _, p := range l.Tx.TxData.Parameters {
			visit(p)
		}
	case schema.LinkedTxMulti:
		for _, c := range l.TxMulti.TxData {
			for _, p := range c.Parameters {
				visit(p)
			}
		}
	case schema.LinkedTransfer:
		visit(l.Transfer.Address)
		if l.Transfer.Value.Parameter != nil {
			visit(*l.Transfer.Value.Parameter)
		}
	}
	return out
}

func describe(p schema.Parameter) string {
	switch {
	case p.Type == schema.ParamConstant:
		return fmt.Sprintf("constant `%v`", p.Value)
	case p.Type == schema.ParamReferenced:
		return fmt.Sprintf("parameter `%s`", p.RefParameterID)
	case p.Type == schema.ParamComputed:
		return fmt.Sprintf("%s of %d values", p.Operation, len(p.Values))
	case p.Type == schema.ParamContractRead:
		return fmt.Sprintf("read `%s`", p.ABI)
	}
	s := fmt.Sprintf("`%s` **%s**", p.Type, Truncate(p.Label, MaxLabelWidth))
	var notes []string
	if p.ID != "" {
		notes = append(notes, "id "+p.ID)
	}
	if p.Required != nil && *p.Required {
		notes = append(notes, "required")
	}
	if p.Scope == schema.ScopeGlobal {
		notes = append(notes, "global")
	}
	if len(p.Options) > 0 {
		labels := make([]string, len(p.Options))
		for i, o := range p.Options {
			labels[i] = o.Label
		}
		notes = append(notes, "options: "+strings.Join(labels, ", "))
	}
	if len(notes) > 0 {
		s += " (" + strings.Join(notes, "; ") + ")"
	}
	return s
}
