package configloader

import "github.com/yaklabco/ragged/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans: only true in override is visible, so a layer cannot unset
//     a flag enabled below it
//   - Pointers: override replaces base if non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Output != "" {
		result.Output = override.Output
	}

	result.Codec = mergeCodec(base.Codec, override.Codec)
	result.Reduce = mergeReduce(base.Reduce, override.Reduce)

	if override.Builder.Initial != 0 {
		result.Builder.Initial = override.Builder.Initial
	}
	if override.Builder.Resize != 0 {
		result.Builder.Resize = override.Builder.Resize
	}

	return &result
}

func mergeCodec(base, override config.CodecConfig) config.CodecConfig {
	result := base

	if override.NaNString != "" {
		result.NaNString = override.NaNString
	}
	if override.InfinityString != "" {
		result.InfinityString = override.InfinityString
	}
	if override.NegInfinityString != "" {
		result.NegInfinityString = override.NegInfinityString
	}
	if override.Separator != "" {
		result.Separator = override.Separator
	}

	result.QuotedSentinels = base.QuotedSentinels || override.QuotedSentinels
	result.LineDelimited = base.LineDelimited || override.LineDelimited
	result.SkipInvalid = base.SkipInvalid || override.SkipInvalid

	return result
}

func mergeReduce(base, override config.ReduceConfig) config.ReduceConfig {
	result := base

	if override.Axis != nil {
		axis := *override.Axis
		result.Axis = &axis
	}

	result.KeepDims = base.KeepDims || override.KeepDims
	result.MaskIdentity = base.MaskIdentity || override.MaskIdentity
	result.FlattenRecords = base.FlattenRecords || override.FlattenRecords

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
