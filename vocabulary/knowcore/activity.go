package knowcore

import "github.com/c360studio/semstreams/vocabulary"

// Activity predicates describe individual pipeline-pass invocations (an LLM
// call, a coreference arbitration round) as provenance entities in the
// graph, independent of the semantic content those calls produce.
const (
	// PredicateActivityType classifies the activity. Values: model_call.
	PredicateActivityType = "knowcore.activity.type"

	// ActivityModel names the model endpoint used for the call.
	ActivityModel = "knowcore.activity.model"

	// ActivityLoop links an activity to the ingestion run or pipeline
	// invocation it belongs to.
	ActivityLoop = "knowcore.activity.loop"

	// ActivityDuration is the call duration in milliseconds.
	ActivityDuration = "knowcore.activity.duration"

	// ActivityTokensIn is the prompt token count.
	ActivityTokensIn = "knowcore.activity.tokens_in"

	// ActivityTokensOut is the completion token count.
	ActivityTokensOut = "knowcore.activity.tokens_out"

	// ActivitySuccess records whether the call completed without error.
	ActivitySuccess = "knowcore.activity.success"

	// ActivityError holds the error message when ActivitySuccess is false.
	ActivityError = "knowcore.activity.error"

	// ActivityStartedAt is the RFC3339 call start timestamp.
	ActivityStartedAt = "knowcore.activity.started_at"

	// ActivityEndedAt is the RFC3339 call end timestamp.
	ActivityEndedAt = "knowcore.activity.ended_at"

	// DCIdentifier carries an external trace correlation id (Dublin Core
	// identifier convention, matched by the rest of the pack).
	DCIdentifier = "dc.terms.identifier"
)

// LLM-specific predicates, layered on top of the generic activity
// predicates for calls made through the model client.
const (
	// LLMCapability names the Capability the call was routed for.
	LLMCapability = "knowcore.llm.capability"

	// LLMProvider names the backing provider (anthropic, ollama, ...).
	LLMProvider = "knowcore.llm.provider"

	// LLMFinishReason is the provider's stop reason for the completion.
	LLMFinishReason = "knowcore.llm.finish_reason"

	// LLMRequestID is the provider-assigned or client-generated request id.
	LLMRequestID = "knowcore.llm.request_id"

	// LLMContextBudget is the context window budget, in tokens, the call
	// was constrained to.
	LLMContextBudget = "knowcore.llm.context_budget"

	// LLMContextTruncated records whether the prompt was truncated to fit
	// LLMContextBudget.
	LLMContextTruncated = "knowcore.llm.context_truncated"

	// LLMRetries is the number of retry attempts before the call succeeded
	// or exhausted its budget.
	LLMRetries = "knowcore.llm.retries"

	// LLMFallback names a fallback model tried during the call, one triple
	// per fallback attempted.
	LLMFallback = "knowcore.llm.fallback"

	// LLMMessagesCount is the number of messages sent in the request.
	LLMMessagesCount = "knowcore.llm.messages_count"

	// LLMResponsePreview is a truncated preview of the response text, for
	// lightweight graph queries that shouldn't load the full payload.
	LLMResponsePreview = "knowcore.llm.response_preview"
)

func init() {
	registerActivityPredicates()
	registerLLMPredicates()
}

func registerActivityPredicates() {
	vocabulary.Register(PredicateActivityType,
		vocabulary.WithDescription("Activity classification"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"activityType"))

	vocabulary.Register(ActivityModel,
		vocabulary.WithDescription("Model name for the call"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"activityModel"))

	vocabulary.Register(ActivityLoop,
		vocabulary.WithDescription("Ingestion run or pipeline invocation this activity belongs to"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI("http://purl.obolibrary.org/obo/BFO_0000050")) // bfo:part_of

	vocabulary.Register(ActivityDuration,
		vocabulary.WithDescription("Duration in milliseconds"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"duration"))

	vocabulary.Register(ActivityTokensIn,
		vocabulary.WithDescription("Input token count"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"tokensIn"))

	vocabulary.Register(ActivityTokensOut,
		vocabulary.WithDescription("Output token count"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"tokensOut"))

	vocabulary.Register(ActivitySuccess,
		vocabulary.WithDescription("Whether the activity succeeded"),
		vocabulary.WithDataType("bool"))

	vocabulary.Register(ActivityError,
		vocabulary.WithDescription("Error message if failed"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(ActivityStartedAt,
		vocabulary.WithDescription("Start timestamp (RFC3339)"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvStartedAtTime))

	vocabulary.Register(ActivityEndedAt,
		vocabulary.WithDescription("End timestamp (RFC3339)"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvEndedAtTime))

	vocabulary.Register(DCIdentifier,
		vocabulary.WithDescription("External trace correlation id"),
		vocabulary.WithDataType("string"))
}

func registerLLMPredicates() {
	vocabulary.Register(LLMCapability,
		vocabulary.WithDescription("Capability the call was routed for"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"llmCapability"))

	vocabulary.Register(LLMProvider,
		vocabulary.WithDescription("Backing model provider"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"llmProvider"))

	vocabulary.Register(LLMFinishReason,
		vocabulary.WithDescription("Provider stop reason"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(LLMRequestID,
		vocabulary.WithDescription("Request id assigned to the call"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(LLMContextBudget,
		vocabulary.WithDescription("Context window budget in tokens"),
		vocabulary.WithDataType("int"))

	vocabulary.Register(LLMContextTruncated,
		vocabulary.WithDescription("Whether the prompt was truncated to fit the context budget"),
		vocabulary.WithDataType("bool"))

	vocabulary.Register(LLMRetries,
		vocabulary.WithDescription("Retry attempts before success or exhaustion"),
		vocabulary.WithDataType("int"))

	vocabulary.Register(LLMFallback,
		vocabulary.WithDescription("Fallback model tried during the call"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(LLMMessagesCount,
		vocabulary.WithDescription("Number of messages sent in the request"),
		vocabulary.WithDataType("int"))

	vocabulary.Register(LLMResponsePreview,
		vocabulary.WithDescription("Truncated preview of the response text"),
		vocabulary.WithDataType("string"))
}
