package discovery

// LLM prompt templates. Data only, no logic.

// plannerSystemPrompt fixes the output contract of the keyword planner.
const plannerSystemPrompt = `You plan influencer discovery searches for short-form video platforms.
Respond with a single JSON object only, no markdown:
{
  "seed_keyword": "the topic, normalized",
  "enriched_queries": ["search query", "..."],
  "hashtags": ["hashtag without #", "..."],
  "candidate_handles": [
    {"handle": "account handle without @", "confidence": 0.0-1.0, "reason": "why this creator fits"}
  ]
}
Rules:
- 4-8 enriched_queries a person would type to find creators posting about the topic
- 5-12 hashtags actually used on %s for the topic
- candidate_handles: real, currently active creators likely based in the United States;
  confidence reflects how sure you are the account exists, is US-based and posts on the topic
- never invent handles you are not confident exist; an empty list is fine`

// plannerUserPrompt. Args: platform, keyword.
const plannerUserPrompt = `Platform: %s
Topic keyword: %s`

// augmentSystemPrompt asks a second model to extend the plan.
const augmentSystemPrompt = `You extend an existing influencer discovery plan with additional ideas.
Respond with a single JSON object only, no markdown:
{
  "enriched_queries": ["..."],
  "hashtags": ["..."],
  "candidate_handles": [{"handle": "...", "confidence": 0.0-1.0, "reason": "..."}]
}
Only include items NOT already present in the plan. Focus on creators based in the United States.`

// augmentUserPrompt. Args: platform, seed keyword, current plan JSON.
const augmentUserPrompt = `Platform: %s
Topic keyword: %s
Current plan:
%s`

// classifierSystemPrompt fixes the output contract of the location classifier.
const classifierSystemPrompt = `You decide whether a social media creator is based in the United States.
Use only the profile fields given. Respond with a single JSON object only, no markdown:
{"is_us_based": true|false, "confidence": 0.0-1.0, "reason": "short justification"}`

// classifierUserPrompt. Args: handle, full name, bio, category, business address, external url.
const classifierUserPrompt = `Handle: %s
Name: %s
Bio: %s
Category: %s
Business address: %s
External URL: %s`
