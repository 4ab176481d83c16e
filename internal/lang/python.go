package lang

func init() {
	Register(&LanguageSpec{
		Language:          Python,
		FileExtensions:    []string{".py"},
		MethodNodeTypes:   []string{"function_definition"},
		NameField:         "name",
		LiteralNodeTypes:  []string{"integer", "float", "string", "concatenated_string", "true", "false", "none"},
		NullLiteralTypes:  []string{"none"},
		CommentNodeTypes:  []string{"comment"},
		IdentifierTypes:   []string{"identifier"},
		OperatorNodeTypes: []string{"binary_operator", "boolean_operator", "unary_operator", "comparison_operator", "augmented_assignment", "not_operator"},
		DisambiguationNodeTypes: []string{
			"assignment",
			"subscript",
			"attribute",
			"call",
		},
		DeclaratorFields: map[string]string{
			"assignment":               "left",
			"for_statement":            "left",
			"default_parameter":        "name",
			"typed_default_parameter":  "name",
			"typed_parameter":          "",
			"list_splat_pattern":       "",
			"dictionary_splat_pattern": "",
		},
		DeclaratorListTypes: []string{"pattern_list", "tuple_pattern"},
		ParameterListTypes:  []string{"parameters", "lambda_parameters"},
		CallNameFields:      map[string]string{"call": "function"},
		MemberFields:        map[string]string{"attribute": "attribute"},
	})
}
