package orchestrator

import (
	"context"

	"assistd/pkg/types"
)

// TranscribeAndTranslate answers an audio attachment with the transcription
// domain prompt: transcribe the speech, then translate it to the target
// language. A thin preset over Answer.
func (o *Orchestrator) TranscribeAndTranslate(ctx context.Context, audio *types.MediaRef, targetLanguage string) (*types.Answer, error) {
	if audio == nil {
		return nil, ErrInvalidInput("audio attachment is required")
	}
	if targetLanguage == "" {
		targetLanguage = defaultLanguage
	}
	return o.Answer(ctx, types.AnswerRequest{
		Prompt:   "Transcreva o audio e traduza o texto para " + targetLanguage + ".",
		Language: targetLanguage,
		Domain:   "audio-transcription",
		Media:    &types.Media{Audio: audio},
	})
}

// DescribeEnvironment answers an image attachment with the image-analysis
// domain prompt, describing the scene for accessibility use.
func (o *Orchestrator) DescribeEnvironment(ctx context.Context, image *types.MediaRef, language string) (*types.Answer, error) {
	if image == nil {
		return nil, ErrInvalidInput("image attachment is required")
	}
	if language == "" {
		language = defaultLanguage
	}
	return o.Answer(ctx, types.AnswerRequest{
		Prompt:   "Descreva detalhadamente o ambiente e os objetos visiveis na imagem.",
		Language: language,
		Domain:   "image-analysis",
		Media:    &types.Media{Image: image},
	})
}
