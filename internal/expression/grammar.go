package expression

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

//nolint:govet // Participle struct tags are DSL, not reflect tags
type keyExpr struct {
	Head *operand   `@@`
	Tail []*operand `( "+" @@ )*`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type operand struct {
	String *string   `  @String`
	Number *string   `| @Number`
	Bool   *boolean  `| @("true" | "false")`
	Null   bool      `| @"null"`
	Group  *keyExpr  `| "(" @@ ")"`
	Path   *pathExpr `| @@`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type pathExpr struct {
	Root   string   `"#"? @Ident`
	Fields []string `( "." @Ident )*`
}

type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

//nolint:govet // Participle DSL uses unkeyed fields
var keyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'[^']*'`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[.+#()]`},
})

func newParser() *participle.Parser[keyExpr] {
	parser, err := participle.Build[keyExpr](
		participle.Lexer(keyLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to build key expression parser: %v", err))
	}
	return parser
}
