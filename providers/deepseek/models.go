package deepseek

import "github.com/braid-labs/braid/core"

// Model constants for DeepSeek models.
const (
	// ModelChat is the general-purpose chat model (DeepSeek-V3 series).
	ModelChat core.ModelID = "deepseek-chat"

	// ModelReasoner is the reasoning model (DeepSeek-R1 series). It emits
	// its chain of thought on the reasoning channel before the answer.
	ModelReasoner core.ModelID = "deepseek-reasoner"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = ModelChat

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:          ModelChat,
		DisplayName: "DeepSeek Chat",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 8192,
	},
	{
		ID:          ModelReasoner,
		DisplayName: "DeepSeek Reasoner",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureReasoning,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 65536,
	},
}

// modelRegistry is a map for quick model lookup by ID.
var modelRegistry = buildModelRegistry()

// buildModelRegistry creates a map from model ID to ModelInfo.
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
