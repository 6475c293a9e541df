package ical

import (
	"os"
	"testing"
)

func TestLex(t *testing.T) {
	raw, err := os.ReadFile("fixtures/example.ics")
	if err != nil {
		t.Fatal(err)
	}

	lines, err := unfold(string(raw))
	if err != nil {
		t.Fatal(err)
	}

	lexer := lex(newDocument(lines).input)

	for {
		item := lexer.nextItem()

		if item.typ == itemEOF {
			break
		}

		if item.typ == itemError {
			t.Error(item)
		}
	}
}

func TestLexContentLine(t *testing.T) {
	lexer := lex("DTSTART;TZID=Europe/Paris:20240112T140000\r\n")

	want := []item{
		{typ: itemName, val: "DTSTART"},
		{typ: itemSemiColon, val: ";"},
		{typ: itemParamName, val: "TZID"},
		{typ: itemEqual, val: "="},
		{typ: itemParamValue, val: "Europe/Paris"},
		{typ: itemColon, val: ":"},
		{typ: itemValue, val: "20240112T140000"},
		{typ: itemLineEnd, val: "\r\n"},
		{typ: itemEOF},
	}

	for i, expected := range want {
		got := lexer.nextItem()
		if got.typ != expected.typ || got.val != expected.val {
			t.Errorf("item %d = (%d, %q), want (%d, %q)", i, got.typ, got.val, expected.typ, expected.val)
		}
	}
}

func TestLexQuotedParamValue(t *testing.T) {
	lexer := lex("ATTENDEE;DIR=\"ldap://host/cn=Marc,ou=Staff\":mailto:marc@example.com\r\n")

	var values []item
	for {
		it := lexer.nextItem()
		if it.typ == itemEOF {
			break
		}
		if it.typ == itemError {
			t.Fatal(it)
		}
		if it.typ == itemParamValue {
			values = append(values, it)
		}
	}

	if len(values) != 1 {
		t.Fatalf("got %d param values, want 1", len(values))
	}
	if values[0].val != "ldap://host/cn=Marc,ou=Staff" {
		t.Errorf("param value = %q", values[0].val)
	}
}

func TestLexMultiValuedParam(t *testing.T) {
	lexer := lex("ATTENDEE;MEMBER=\"mailto:a@example.com\",\"mailto:b@example.com\":mailto:c@example.com\r\n")

	var values []string
	for {
		it := lexer.nextItem()
		if it.typ == itemEOF {
			break
		}
		if it.typ == itemError {
			t.Fatal(it)
		}
		if it.typ == itemParamValue {
			values = append(values, it.val)
		}
	}

	if len(values) != 2 {
		t.Fatalf("got %d param values, want 2", len(values))
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  SyntaxErrorKind
	}{
		{"SUMMARY\r\n", MissingColon},
		{"SUMMARY;LANGUAGE\r\n", BadParameterSyntax},
		{"SUMMARY;LANGUAGE=\"en\r\n", UnterminatedQuote},
		{":value\r\n", EmptyName},
		{";FOO=bar:value\r\n", EmptyName},
	}

	for _, test := range tests {
		lexer := lex(test.input)

		var errItem *item
		for {
			it := lexer.nextItem()
			if it.typ == itemEOF {
				break
			}
			if it.typ == itemError {
				errItem = &it
				break
			}
		}

		if errItem == nil {
			t.Errorf("lex(%q): no error item", test.input)
			continue
		}
		if errItem.err != test.kind {
			t.Errorf("lex(%q) = %v, want kind %v", test.input, errItem.err, test.kind)
		}
	}
}
