/*
Package blockflow is the graph-validation core of a visual workflow editor.

A workflow is a canvas of blocks (Start, Form, Conditional, API, End) joined by
directed edges. blockflow answers the questions an editor asks on every change:
which blocks may be deleted, whether the workflow may be saved, and which form
fields an API block can put in its request body.

# Concept

Every query works on an immutable domain.Graph and has no side effects. The
session.Editor is the single writer of one canvas: each mutation recomputes the
deletable flags and Save runs the save gate before persisting a domain.Document
through a ports.WorkflowStore (memory, file, SQLite or Redis).

# Usage

	eng := blockflow.New(blockflow.WithStore(memory.NewStore()))

	ctx := context.Background()
	id, _ := eng.Sessions().Create(ctx)

	err := eng.Sessions().WithEditor(ctx, id, func(ctx context.Context, ed *session.Editor) error {
		ed.AddBlock(domain.NodeTypeStart, domain.Position{})
		ed.AddBlock(domain.NodeTypeForm, domain.Position{X: 200})
		ed.AddBlock(domain.NodeTypeEnd, domain.Position{X: 400})
		ed.Connect("start", "form_2", "")
		ed.Connect("form_2", "end_3", "")
		ed.ConfigureForm("form_2", "Contact", []domain.FormField{
			{Name: "Email", Type: domain.FieldTypeEmail, Required: true},
		})
		_, err := ed.Save(ctx)
		return err
	})

Documents built elsewhere (files, the dsl package) can be checked without a
session through Engine.Validate, Engine.Lint, Engine.Deletable and
Engine.AvailableFields.
*/
package blockflow
