// Package render prints command results as a table or JSON, and addresses
// as QR codes.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlexZinkM/shardwallet/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/skip2/go-qrcode"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

// Print writes v to w. Table output knows the result types in package model.
func Print(w io.Writer, f Format, v any) error {
	if f == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	switch v := v.(type) {
	case *model.CreateResponse:
		t.AppendHeader(table.Row{"Key", "Value"})
		t.AppendRow(table.Row{"Address", v.Address})
		t.AppendRow(table.Row{"Format", v.Format})
		t.AppendRow(table.Row{"PWHash", v.PWHash})
		appendFiles(t, v.Files)
		if len(v.Mnemonic) > 0 {
			t.AppendRow(table.Row{"Seed words", strings.Join(v.Mnemonic, " ")})
		}
	case *model.VerifyResponse:
		t.AppendHeader(table.Row{"Key", "Value"})
		t.AppendRow(table.Row{"Address", v.Address})
		t.AppendRow(table.Row{"Format", v.Format})
		t.AppendRow(table.Row{"PWHash", v.PWHash})
		appendFiles(t, v.Files)
		t.AppendRow(table.Row{"Verified", v.Verified})
	case *model.WalletInfo:
		t.AppendHeader(table.Row{"Key", "Value"})
		t.AppendRow(table.Row{"Address", v.Address})
		t.AppendRow(table.Row{"Format", v.Format})
		t.AppendRow(table.Row{"PWHash", v.PWHash})
		if v.KeyShareCount > 0 {
			t.AppendRow(table.Row{"Shares", fmt.Sprintf("%d of %d needed", v.RecoveryThreshold, v.KeyShareCount)})
			t.AppendRow(table.Row{"Share indices", joinIndices(v.ShareIndices)})
		}
		appendFiles(t, v.Files)
		if b := v.Balance; b != nil {
			appendBalance(t, b)
		}
	case []model.BalanceResponse:
		t.AppendHeader(table.Row{"Address", "SOL", "USDC", "Value", "Error"})
		for _, b := range v {
			value := ""
			if b.Value != "" {
				value = b.Value + " " + strings.ToUpper(b.Currency)
			}
			t.AppendRow(table.Row{b.Address, b.SOL, b.USDC, value, b.Error})
		}
	default:
		return fmt.Errorf("no table layout for %T", v)
	}

	t.Render()
	return nil
}

// QR writes the address as a QR code drawn with terminal block characters.
func QR(w io.Writer, address string) error {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}
	_, err = io.WriteString(w, qr.ToSmallString(false))
	return err
}

// QRPNG returns the address as a size x size PNG QR code.
func QRPNG(address string, size int) ([]byte, error) {
	png, err := qrcode.Encode(address, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

func appendFiles(t table.Writer, files []string) {
	for i, f := range files {
		key := ""
		if i == 0 {
			key = "Files"
		}
		t.AppendRow(table.Row{key, f})
	}
}

func appendBalance(t table.Writer, b *model.BalanceResponse) {
	if b.Error != "" {
		t.AppendRow(table.Row{"Balance", "error: " + b.Error})
		return
	}
	t.AppendRow(table.Row{"SOL", b.SOL})
	t.AppendRow(table.Row{"USDC", b.USDC})
	if b.Value != "" {
		t.AppendRow(table.Row{"Value", b.Value + " " + strings.ToUpper(b.Currency)})
	}
}

func joinIndices(idx []uint8) string {
	parts := make([]string, len(idx))
	for i, x := range idx {
		parts[i] = strconv.Itoa(int(x))
	}
	return strings.Join(parts, ", ")
}
