package domain

// User-facing workflow messages. They are shown verbatim in the editor error banner.
const (
	MsgOnlyOneStart = "Only one Start Block is allowed"
	MsgOnlyOneEnd   = "Only one End Block is allowed"

	MsgIncompleteWorkflow = "Incomplete workflow: a Start Block and an End Block are required"
	MsgNoCompletePath     = "The workflow is not valid. There is no path from Start to End that passes through at least one other block"

	MsgFormNeedsFields     = "All Form Nodes must have at least one field defined"
	MsgFormFieldsMalformed = "All Form Node fields must have a name and type defined"
	MsgAPIIncomplete       = "All API Nodes must have an endpoint, request body defined"
)

// Default document metadata written on save.
const (
	DefaultWorkflowName    = "Sample Workflow"
	DefaultWorkflowVersion = "1.0.0"
)
