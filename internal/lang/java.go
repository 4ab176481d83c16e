package lang

func init() {
	Register(&LanguageSpec{
		Language:        Java,
		FileExtensions:  []string{".java"},
		MethodNodeTypes: []string{"method_declaration", "constructor_declaration", "compact_constructor_declaration"},
		NameField:       "name",
		LiteralNodeTypes: []string{
			"decimal_integer_literal",
			"hex_integer_literal",
			"octal_integer_literal",
			"binary_integer_literal",
			"decimal_floating_point_literal",
			"hex_floating_point_literal",
			"string_literal",
			"character_literal",
			"true",
			"false",
			"null_literal",
		},
		NullLiteralTypes: []string{"null_literal"},
		CommentNodeTypes: []string{"line_comment", "block_comment"},
		SkipNodeTypes:    []string{"modifiers"},
		IdentifierTypes:  []string{"identifier"},
		OperatorNodeTypes: []string{
			"binary_expression",
			"unary_expression",
			"update_expression",
			"assignment_expression",
		},
		DisambiguationNodeTypes: []string{
			"assignment_expression",
			"array_access",
			"field_access",
			"method_invocation",
		},
		DeclaratorFields: map[string]string{
			"variable_declarator":    "name",
			"formal_parameter":       "name",
			"catch_formal_parameter": "name",
			"enhanced_for_statement": "name",
			"resource":               "name",
			"lambda_expression":      "parameters",
		},
		ParameterListTypes: []string{"inferred_parameters"},
		CallNameFields:     map[string]string{"method_invocation": "name"},
		MemberFields:       map[string]string{"field_access": "field"},
		Wrappers: []Wrapper{
			{
				Prefix: "public class Test {SomeUnknownReturnType f() {",
				Suffix: "return noSuchReturnValue; }}",
			},
			{Prefix: "public class Test {", Suffix: "}"},
		},
	})
}
