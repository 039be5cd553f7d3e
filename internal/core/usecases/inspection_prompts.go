package usecases

import "TUI_channel_research/internal/core/domain"

const (
	agentPDFResearch = "pdf_research_agent"
	agentWriter      = "professional_writer_agent"
)

var inspectionProfiles = map[string]domain.AgentProfile{
	agentPDFResearch: {
		Role: "Research Agent",
		Goal: "Search through the PDF to find relevant answers",
		Backstory: `You are adept at searching and extracting data from documents.
You make sure every answer is accurate and backed by the report.`,
	},
	agentWriter: {
		Role: "Professional Writer",
		Goal: "Write professional emails based on the research agent's findings",
		Backstory: `You have excellent writing skills and craft clear and concise emails
from the information you are given.`,
	},
}

var inspectionTasks = []domain.Task{
	{
		Name:  "answer_customer_question",
		Agent: agentPDFResearch,
		Description: `Answer the customer's question based on the home inspection PDF.
Search the PDF for every part of the question and answer only with what the report says.
If the report does not cover something, say so.

Here is the customer's question: {customer_question}`,
		ExpectedOutput: "A clear and accurate answer to the customer's question, based on the PDF content.",
	},
	{
		Name:  "write_contractor_email",
		Agent: agentWriter,
		Description: `Write a professional email to a contractor based on the research
agent's findings. The email should clearly state the issues found in the specified section
of the report and request a quote or an action plan for fixing them.

Sign the email with the following details:
Best regards,
{sender_name}
{sender_company}`,
		ExpectedOutput: "A clear and concise email to a contractor addressing the issues found.",
	},
}
