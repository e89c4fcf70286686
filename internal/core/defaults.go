package core

import "github.com/valter-silva-au/flowfolio/pkg/models"

// DefaultWorkflows returns the built-in catalog used when the durable slot is
// empty or unreadable. Each call returns fresh copies.
func DefaultWorkflows() []models.WorkflowRecord {
	return []models.WorkflowRecord{
		{
			ID:               "1",
			Title:            "AI Customer Support Agent",
			ShortDescription: "Multi-lingual customer support agent using GPT-4 and Vector Databases.",
			FullDescription:  "This workflow connects your Intercom or Zendesk to a custom RAG (Retrieval-Augmented Generation) pipeline. It uses n8n to orchestrate the flow: receiving webhooks, querying Pinecone for knowledge base context, generating a response via OpenAI, and posting back to the customer service platform.",
			Category:         models.CategoryAIAgents,
			ImageURL:         "https://images.unsplash.com/photo-1531746790731-6c087fecd05a?auto=format&fit=crop&q=80&w=1200",
			NodesCount:       12,
			Complexity:       models.ComplexityAdvanced,
			Tags:             []string{"OpenAI", "Pinecone", "Intercom", "Webhooks"},
		},
		{
			ID:               "2",
			Title:            "Automated SEO Blog Generator",
			ShortDescription: "Generate SEO-optimized blog posts from keywords using Gemini API.",
			FullDescription:  "A comprehensive pipeline that takes a primary keyword, generates a content outline, creates full-length articles, finds relevant images, and publishes directly to WordPress or Ghost. It includes a human-in-the-loop approval step via Slack.",
			Category:         models.CategoryMarketing,
			ImageURL:         "https://images.unsplash.com/photo-1499750310107-5fef28a66643?auto=format&fit=crop&q=80&w=1200",
			NodesCount:       8,
			Complexity:       models.ComplexityMedium,
			Tags:             []string{"Gemini", "WordPress", "Slack", "SEO"},
		},
		{
			ID:               "3",
			Title:            "Lead Enrichment Pipeline",
			ShortDescription: "Automatically enrich new CRM leads with LinkedIn and financial data.",
			FullDescription:  "Triggered by a new lead in HubSpot, this workflow uses Apollo.io and Clearbit APIs to find detailed contact and company information. It then uses an LLM to categorize the lead and draft a personalized outreach email.",
			Category:         models.CategoryBusinessOps,
			ImageURL:         "https://images.unsplash.com/photo-1460925895917-afdab827c52f?auto=format&fit=crop&q=80&w=1200",
			NodesCount:       15,
			Complexity:       models.ComplexityAdvanced,
			Tags:             []string{"HubSpot", "Apollo", "LLM", "Data Analysis"},
		},
		{
			ID:               "4",
			Title:            "Voice-to-Task Automation",
			ShortDescription: "Transcribe voice memos and turn them into structured project tasks.",
			FullDescription:  "Connects your mobile audio recorder (via Telegram or WhatsApp) to Notion and Linear. Uses Whisper for transcription and Gemini for extracting action items, deadlines, and project tags from natural speech.",
			Category:         models.CategoryBusinessOps,
			ImageURL:         "https://images.unsplash.com/photo-1589254065878-42c9da997008?auto=format&fit=crop&q=80&w=1200",
			NodesCount:       6,
			Complexity:       models.ComplexityMedium,
			Tags:             []string{"Whisper", "Notion", "Linear", "Transcription"},
		},
	}
}
