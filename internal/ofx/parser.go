// Package ofx converts OFX/QFX bank and credit card statements into
// transaction inputs.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// ErrNoStatements is returned when a file parses but carries no statements.
var ErrNoStatements = errors.New("no bank or credit card statements found")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on its line with no closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// amountPrecision is the number of fraction digits kept from TRNAMT.
const amountPrecision = 6

// Parser implements OFX/QFX file parsing.
type Parser struct {
	categoryID     int64
	includeCredits bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithCategory files every imported transaction under categoryID.
func WithCategory(categoryID int64) Option {
	return func(p *Parser) {
		p.categoryID = categoryID
	}
}

// WithCredits imports deposits and refunds as well as debits.
func WithCredits() Option {
	return func(p *Parser) {
		p.includeCredits = true
	}
}

// NewParser creates a new OFX parser. Transactions land in the "Others"
// category and only debits are imported unless configured otherwise.
func NewParser(opts ...Option) *Parser {
	p := &Parser{categoryID: model.OthersCategoryID}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into transaction inputs, in statement
// order. Duplicate FITIDs within a statement and zero amounts are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.TransactionInput, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var inputs []model.TransactionInput
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			inputs = append(inputs, p.convertList(stmt.BankTranList.Transactions, model.PaymentOther)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			inputs = append(inputs, p.convertList(stmt.BankTranList.Transactions, model.PaymentCard)...)
		}
	}

	if bankStmts+ccStmts == 0 {
		return nil, ErrNoStatements
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(inputs),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return inputs, nil
}

func (p *Parser) convertList(txns []ofxgo.Transaction, method model.PaymentMethod) []model.TransactionInput {
	seen := make(map[string]bool, len(txns))
	out := make([]model.TransactionInput, 0, len(txns))

	for _, ofxTx := range txns {
		fitID := string(ofxTx.FiTID)
		if fitID != "" {
			if seen[fitID] {
				slog.Debug("Skipping duplicate OFX transaction", "fitid", fitID)
				continue
			}
			seen[fitID] = true
		}

		in, ok, err := p.convertTransaction(ofxTx, method)
		if err != nil {
			slog.Warn("Skipping unreadable OFX transaction", "fitid", fitID, "error", err)
			continue
		}
		if ok {
			out = append(out, in)
		}
	}
	return out
}

// convertTransaction maps one OFX transaction. ok is false when the
// transaction is not imported.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, method model.PaymentMethod) (model.TransactionInput, bool, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(amountPrecision))
	if err != nil {
		return model.TransactionInput{}, false, fmt.Errorf("invalid amount: %w", err)
	}
	// OFX uses negative amounts for debits.
	if amount.IsZero() || (amount.IsPositive() && !p.includeCredits) {
		return model.TransactionInput{}, false, nil
	}
	if ofxTx.DtPosted.IsZero() {
		return model.TransactionInput{}, false, errors.New("missing posted date")
	}

	if ofxTx.TrnType == ofxgo.TrnTypeATM {
		method = model.PaymentCash
	}

	return model.TransactionInput{
		Amount:        amount.Abs(),
		CategoryID:    p.categoryID,
		Note:          p.extractMerchantName(ofxTx),
		Date:          ofxTx.DtPosted.UnixMilli(),
		PaymentMethod: method,
	}, true, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"UPI/",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// Accounts returns the unique account IDs in the file, in file order.
func (p *Parser) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}
