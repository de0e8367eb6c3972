package qwen

import "github.com/braid-labs/braid/core"

// Model constants for Qwen models.
const (
	// ModelMax is the flagship model.
	ModelMax core.ModelID = "qwen-max"

	// ModelPlus balances capability and cost.
	ModelPlus core.ModelID = "qwen-plus"

	// ModelTurbo is the fast, low-cost model.
	ModelTurbo core.ModelID = "qwen-turbo"

	// ModelQwQPlus is the reasoning model. DashScope serves it in
	// streaming mode only; non-streaming requests are rejected upstream.
	ModelQwQPlus core.ModelID = "qwq-plus"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = ModelMax

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:          ModelMax,
		DisplayName: "Qwen Max",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
		},
		ContextWindow:   32768,
		MaxOutputTokens: 8192,
	},
	{
		ID:          ModelPlus,
		DisplayName: "Qwen Plus",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 8192,
	},
	{
		ID:          ModelTurbo,
		DisplayName: "Qwen Turbo",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 8192,
	},
	{
		ID:          ModelQwQPlus,
		DisplayName: "QwQ Plus",
		Capabilities: []core.Feature{
			core.FeatureChatStreaming,
			core.FeatureReasoning,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 8192,
	},
}

// modelRegistry is a map for quick model lookup by ID.
var modelRegistry = buildModelRegistry()

func buildModelRegistry() map[core.ModelID]*core.ModelInfo {
	registry := make(map[core.ModelID]*core.ModelInfo, len(models))
	for i := range models {
		registry[models[i].ID] = &models[i]
	}
	return registry
}

// GetModelInfo returns the ModelInfo for a given model ID, or nil if not found.
func GetModelInfo(id core.ModelID) *core.ModelInfo {
	return modelRegistry[id]
}

// AvailableModels returns the static model list. The list does not depend
// on credentials, so callers can enumerate models without a provider.
func AvailableModels() []core.ModelInfo {
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}
