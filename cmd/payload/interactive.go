package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/payload-codec/payment"
	"github.com/wippyai/payload-codec/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateEditing modelState = iota
	stateShowResult
)

type interactiveModel struct {
	err      error
	opts     options
	result   []byte
	notes    []string
	inputs   []textinput.Model
	fields   []schema.Field
	focusIdx int
	state    modelState
}

type encodedMsg struct {
	err   error
	data  []byte
	notes []string
}

func newInteractiveModel(opts options) *interactiveModel {
	fields := schema.Payment().Fields()
	initial := map[string]string{
		schema.FieldInstructionData: opts.instruction,
		schema.FieldSeed:            opts.seed,
		schema.FieldAmount:          opts.amount,
		schema.FieldFee:             opts.fee,
		schema.FieldStatus:          opts.status,
		schema.FieldShopWallet:      opts.shopWallet,
		schema.FieldHexWallet:       opts.hexWallet,
	}

	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-12s ", f.Name+":")
		ti.Placeholder = placeholder(f)
		ti.SetValue(initial[f.Name])
		ti.Width = 48
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}

	return &interactiveModel{
		opts:   opts,
		inputs: inputs,
		fields: fields,
		state:  stateEditing,
	}
}

func placeholder(f schema.Field) string {
	if f.Name == schema.FieldFee {
		return "decimal, e.g. 0.025"
	}
	return f.Type()
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "down":
			if m.state == stateEditing {
				m.moveFocus(1)
			}
			return m, nil

		case "shift+tab", "up":
			if m.state == stateEditing {
				m.moveFocus(-1)
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateEditing:
				return m, m.encode
			case stateShowResult:
				m.state = stateEditing
				m.result = nil
				m.notes = nil
				m.err = nil
				return m, nil
			}
		}

	case encodedMsg:
		m.result = msg.data
		m.notes = msg.notes
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateEditing {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) moveFocus(delta int) {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = (m.focusIdx + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIdx].Focus()
}

func (m *interactiveModel) value(name string) string {
	for i, f := range m.fields {
		if f.Name == name {
			return strings.TrimSpace(m.inputs[i].Value())
		}
	}
	return ""
}

func (m *interactiveModel) encode() tea.Msg {
	opts := m.opts
	opts.transfer = false
	opts.instruction = m.value(schema.FieldInstructionData)
	opts.seed = m.value(schema.FieldSeed)
	opts.amount = m.value(schema.FieldAmount)
	opts.fee = m.value(schema.FieldFee)
	opts.status = m.value(schema.FieldStatus)
	opts.shopWallet = m.value(schema.FieldShopWallet)
	opts.hexWallet = m.value(schema.FieldHexWallet)

	data, err := encode(opts)
	if err != nil {
		return encodedMsg{err: err}
	}

	notes := []string{fmt.Sprintf("%d bytes", len(data))}
	if amount, err := strconv.ParseUint(opts.amount, 10, 64); err == nil {
		if fee, err := strconv.ParseFloat(opts.fee, 64); err == nil {
			p := payment.NewPayload(payment.InstructionCreatePayment, opts.seed, amount, fee, opts.status, opts.shopWallet, opts.hexWallet)
			feeAmount, shopAmount := p.Split()
			notes = append(notes, fmt.Sprintf("on transfer: %d to hex wallet, %d to shop wallet", feeAmount, shopAmount))
		}
	}
	if opts.verify != "" {
		if err := verify(context.Background(), opts.verify, opts.entry, data); err != nil {
			return encodedMsg{data: data, notes: notes, err: err}
		}
		notes = append(notes, "verified by "+opts.entry)
	}
	return encodedMsg{data: data, notes: notes}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Payload Encoder"))
	b.WriteString(" ")
	b.WriteString(schema.Payment().Name())
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString(" ")
		b.WriteString(typeStyle.Render(m.fields[i].Type()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateEditing:
		b.WriteString(helpStyle.Render("tab/↓ next field • shift+tab/↑ previous • enter encode • esc quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		if m.result != nil {
			b.WriteString(fieldStyle.Render("hex: "))
			b.WriteString(resultStyle.Render(hex.EncodeToString(m.result)))
			b.WriteString("\n")
		}
		for _, note := range m.notes {
			b.WriteString(helpStyle.Render(note))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter edit • esc quit"))
	}

	return b.String()
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newInteractiveModel(opts))
	_, err := p.Run()
	return err
}
