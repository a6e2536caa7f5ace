package mcp

import "github.com/mark3labs/mcp-go/mcp"

var askHRQuestionTool = mcp.NewTool("ask_hr_question",
	mcp.WithDescription("Answer a question about internal HR documents (leave, remote work, payroll, benefits). Out-of-domain questions are refused; answers cite the source documents they are grounded in."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The HR question, in natural language"),
	),
)
