package lang

func init() {
	Register(&LanguageSpec{
		Language:         JavaScript,
		FileExtensions:   []string{".js", ".jsx", ".mjs", ".cjs"},
		MethodNodeTypes:  []string{"function_declaration", "method_definition", "generator_function_declaration"},
		NameField:        "name",
		LiteralNodeTypes: []string{"number", "string", "template_string", "regex", "true", "false", "null", "undefined"},
		NullLiteralTypes: []string{"null", "undefined"},
		CommentNodeTypes: []string{"comment"},
		IdentifierTypes:  []string{"identifier"},
		OperatorNodeTypes: []string{
			"binary_expression",
			"unary_expression",
			"update_expression",
			"augmented_assignment_expression",
		},
		DisambiguationNodeTypes: []string{
			"assignment_expression",
			"subscript_expression",
			"member_expression",
			"call_expression",
		},
		DeclaratorFields: map[string]string{
			"variable_declarator": "name",
			"assignment_pattern":  "left",
			"arrow_function":      "parameter",
			"catch_clause":        "parameter",
			"for_in_statement":    "left",
		},
		ParameterListTypes: []string{"formal_parameters"},
		CallNameFields:     map[string]string{"call_expression": "function"},
		MemberFields:       map[string]string{"member_expression": "property"},
		Wrappers: []Wrapper{
			{Prefix: "function f() {\n", Suffix: "\n}\n"},
			{Prefix: "class Test {\n", Suffix: "\n}\n"},
		},
	})
}
