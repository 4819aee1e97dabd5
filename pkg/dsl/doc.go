/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing workflow documents.

It allows developers to describe a canvas using a type-safe, fluent builder pattern
instead of writing JSON or YAML by hand. This is particularly useful for seeding
workflows, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New().Named("Signup", "1.0.0")

	b.Add("start").Start().Go("form")

	b.Add("form").Form().
		RequiredField("Email", domain.FieldTypeEmail).
		Go("api")

	b.Add("api").API(domain.MethodPOST, "https://example.com/signup").
		Body("Email").
		Go("end")

	b.Add("end").End()

	doc, err := b.Build()
*/
package dsl
