package usecases

import "TUI_channel_research/internal/core/domain"

const (
	agentScrape          = "scrape_agent"
	agentVectorDB        = "vector_db_agent"
	agentGeneralResearch = "general_research_agent"
	agentFollowUp        = "follow_up_agent"
	agentFallback        = "fallback_agent"
)

const creatorInfoSchema = "```\n" + `{
  "first_name": string | null,
  "last_name": string | null,
  "main_topics_covered": [string] | null,
  "bio": string | null,
  "email_address": string | null,
  "linkedin_url": string | null,
  "has_linked_in": bool | null,   // true when the creator mentions a LinkedIn account
  "x_url": string | null,
  "has_twitter": bool | null,     // true when the creator mentions a Twitter (X) account
  "has_skool": bool | null        // true when the creator mentions a Skool community
}` + "\n```"

const searchHints = `
If searching for everything at once does not work, search for each field on its own.
To find a first name, search for phrases such as "my name is", "hey guys, it's"
and other ways people introduce themselves.
To find an email, search for phrases such as "you can contact me at", "my email is".`

var researchProfiles = map[string]domain.AgentProfile{
	agentScrape: {
		Role: "Scrape Agent",
		Goal: "Scrape content from YouTube videos and add it to the vector database",
		Backstory: `You extract and process content from YouTube videos.
You make sure every video is scraped accurately and you never make up data.`,
	},
	agentVectorDB: {
		Role: "Vector DB Processor",
		Goal: "Add YouTube videos to the vector database",
		Backstory: `You are detail oriented and make sure every video is
processed and added to the vector database.`,
	},
	agentGeneralResearch: {
		Role: "General Research Agent",
		Goal: "Analyze the YouTube channel and gather all required information",
		Backstory: `You extract actionable information from many sources.
You are persistent and fact driven. You rephrase and re-query until you have what you need.
When looking for specific details you search for the phrases people use to introduce
themselves or to share contact details.`,
		JSONOutput: true,
	},
	agentFollowUp: {
		Role: "Follow-up Agent",
		Goal: "Perform follow-up research to find any missing data",
		Backstory: `You are the last line of defense for completeness. You are thorough
and creative when searching for missing data, and everything you report comes from a search.`,
		JSONOutput: true,
	},
	agentFallback: {
		Role: "Fallback Agent",
		Goal: "Perform final checks and search the internet for missing information",
		Backstory: `You are a meticulous researcher skilled at deep web searches.
If a search reports a rate limit, wait and search again.`,
		JSONOutput: true,
	},
}

var researchTasks = []domain.Task{
	{
		Name:  "scrape_youtube_channel",
		Agent: agentScrape,
		Description: `Fetch the latest {max_videos} videos from the YouTube channel below and
extract the relevant information about them. Everything must come from the channel
and its videos. Do not make up any information.

YouTube channel handle: {youtube_channel_handle}`,
		ExpectedOutput: "The title, publish date and URL of each of the latest {max_videos} videos of the channel.",
	},
	{
		Name:  "process_videos",
		Agent: agentVectorDB,
		Description: `Take the video URLs found by the previous task and add every one of
them to the vector database. Make sure each video is added. Do not make up any information.`,
		ExpectedOutput: "Every video URL added to the vector database, with the result of each addition.",
	},
	{
		Name:  "find_initial_information",
		Agent: agentGeneralResearch,
		Description: `Fill the following content creator profile with as much information
as possible by searching the knowledge base:

` + creatorInfoSchema + `

Leave a field null when the information is missing. Everything must come from the
searches; do not make up any information.` + searchHints,
		ExpectedOutput: "The content creator profile as a single JSON object, with null for unknown fields.",
	},
	{
		Name:  "follow_up",
		Agent: agentFollowUp,
		Description: `Look for the fields that are still null in the content creator profile
from the previous task. Run additional knowledge base searches to complete it. Everything
must come from the searches; do not make up any information.` + searchHints,
		ExpectedOutput: "The completed content creator profile as a single JSON object.",
	},
	{
		Name:  "fallback",
		Agent: agentFallback,
		Description: `Run a final check and use web search to find any information still
missing for the YouTube channel with the handle {youtube_channel_handle}.
Keep every value already found. Everything must come from the searches; do not make up
any information.

Return the profile in this shape:
` + creatorInfoSchema,
		ExpectedOutput: "The content creator profile as a single JSON object, as complete as possible.",
	},
}
