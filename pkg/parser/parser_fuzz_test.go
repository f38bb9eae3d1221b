package parser_test

import (
	"testing"
	"unicode/utf8"

	"github.com/thomasrohde/fncall/pkg/formatter"
	"github.com/thomasrohde/fncall/pkg/parser"
)

// FuzzParseFuncStr feeds random inputs to the parser to catch panics.
// Every input either fails with a *ParseError or yields a call whose
// canonical form parses back to the same call.
func FuzzParseFuncStr(f *testing.F) {
	seeds := []string{
		`myfunc()`,
		`myfunc("test", 123,value=123,name="xxx", arr=[1,2,3], arr2=[a,b,c])`,
		`@myfunc(test, 12a,value=zz10, name=xxx)`,
		`myfunc(test, 123,value=123, name=xxx)`,
		`myfunc('tes"t')`,
		`my_func("test", 123,value=123,name='x"xx')`,
		`!run(a.b.c, -1.5e-3, 0xFF, [true, None, []])`,
		`?ask("line\nbreaké")`,
		// Rejected inputs
		`myfunctest(os.system("ls"),value=123,name="xxx")`,
		`myfunctest(123,value=os.system("ls"),name="xxx")`,
		`myfunctest, 123,value=123,name="xxx")`,
		`myfunc("test", 123,value=123,name="xxx"`,
		`myfunc("test", 123,value=123,name=["xxx")`,
		`my func("test")`,
		`my"func("test")`,
		`myfunc(123); import sys`,
		`f(a=1, 2)`,
		`f(1e999)`,
		`f("\u12")`,
		``,
		`(`,
		`)(`,
		`f(')`,
		`f([[[[`,
	}

	for _, s := range seeds {
		f.Add(s, true)
		f.Add(s, false)
	}

	f.Fuzz(func(t *testing.T, input string, autoQuote bool) {
		call, err := parser.ParseFuncStr(input, autoQuote)
		if err != nil {
			if call != nil {
				t.Fatalf("non-nil call with error for %q", input)
			}
			if !parser.IsParseError(err) {
				t.Fatalf("expected *ParseError for %q, got %T: %v", input, err, err)
			}
			return
		}
		if !utf8.ValidString(input) {
			return
		}

		canonical := formatter.Format(call)
		again, err := parser.ParseFuncStr(canonical, false)
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", canonical, input, err)
		}
		if !call.Equal(again) {
			t.Fatalf("round trip mismatch for %q via %q", input, canonical)
		}
	})
}
