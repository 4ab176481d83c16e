package lang

func init() {
	Register(&LanguageSpec{
		Language:        Go,
		FileExtensions:  []string{".go"},
		MethodNodeTypes: []string{"function_declaration", "method_declaration"},
		NameField:       "name",
		LiteralNodeTypes: []string{
			"int_literal",
			"float_literal",
			"imaginary_literal",
			"rune_literal",
			"interpreted_string_literal",
			"raw_string_literal",
			"true",
			"false",
			"nil",
			"iota",
		},
		NullLiteralTypes:  []string{"nil"},
		CommentNodeTypes:  []string{"comment"},
		IdentifierTypes:   []string{"identifier"},
		OperatorNodeTypes: []string{"binary_expression", "unary_expression", "assignment_statement", "inc_statement", "dec_statement"},
		DisambiguationNodeTypes: []string{
			"assignment_statement",
			"index_expression",
			"selector_expression",
			"call_expression",
		},
		DeclaratorFields: map[string]string{
			"parameter_declaration":          "name",
			"variadic_parameter_declaration": "name",
			"short_var_declaration":          "left",
			"var_spec":                       "name",
			"const_spec":                     "name",
			"range_clause":                   "left",
		},
		DeclaratorListTypes: []string{"expression_list"},
		CallNameFields:      map[string]string{"call_expression": "function"},
		MemberFields:        map[string]string{"selector_expression": "field"},
		Wrappers: []Wrapper{
			{Prefix: "package main\nfunc f() {\n", Suffix: "\n}\n"},
			{Prefix: "package main\n", Suffix: "\n"},
		},
	})
}
