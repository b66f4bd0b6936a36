package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/internal/resilience"
	"github.com/lexintake/intake-cli/pkg/anthropic"
)

const partiesSystemPrompt = `You are a legal assistant identifying the parties named in OCR text of legal documents.

List every distinct party (person or organization). For each, give its procedural role as stated (plaintiff, defendant, applicant, respondent, party_a, party_b, third_party, counsel, other). Set "client_signal" to true only when the text explicitly marks that party as the reader's own side — phrases like "our client", "our firm represents", "the principal".

Respond with a valid JSON object:
{"parties": [{"name": "<party name>", "role": "<role>", "client_signal": <true|false>}]}`

const partiesUserPrompt = `Document text:

%s`

type identifiedParty struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	ClientSignal bool   `json:"client_signal"`
}

type partiesPayload struct {
	Parties []identifiedParty `json:"parties"`
}

// resolveParties identifies parties in the document text and resolves
// each against the known-client roster. Blank input yields an empty list
// without an inference call; inference failure degrades to an empty list.
func (p *Pipeline) resolveParties(ctx context.Context, state *model.WorkflowState) []model.Party {
	if strings.TrimSpace(state.RawText) == "" {
		return []model.Party{}
	}

	retryCfg := resilience.InferenceRetryConfig(p.cfg.Pipeline.MaxInferenceAttempts)
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "resolve_parties")

	payload, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (partiesPayload, error) {
		var pl partiesPayload
		resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.cfg.Anthropic.Model,
			MaxTokens: 1024,
			System:    anthropic.BuildCachedSystemBlocks(partiesSystemPrompt),
			Messages: []anthropic.Message{
				{Role: "user", Content: fmt.Sprintf(partiesUserPrompt, state.RawText)},
			},
		})
		if err != nil {
			return pl, err
		}
		state.Usage.Add(usageOf(resp.Usage))
		if err := json.Unmarshal([]byte(cleanJSON(extractText(resp))), &pl); err != nil {
			return pl, eris.Wrap(err, "parties: parse payload")
		}
		return pl, nil
	})
	if err != nil {
		zap.L().Warn("parties: attempts exhausted, continuing without parties",
			zap.String("run_id", state.RunID),
			zap.Error(err),
		)
		return []model.Party{}
	}

	resolved := resolveAgainstRoster(payload.Parties, state.KnownClients, p.cfg.Pipeline.FuzzyMatchThreshold)

	zap.L().Info("parties: resolved",
		zap.String("run_id", state.RunID),
		zap.Int("parties", len(resolved)),
	)
	return resolved
}

// clientRoleHints marks procedural roles that structurally suggest the
// client side ("Party A", plaintiff-side) for the multi-party default rule.
var clientRoleHints = []string{
	"plaintiff", "applicant", "claimant", "appellant", "party_a", "party a", "principal",
}

// resolveAgainstRoster applies the three-tier resolution policy in strict
// order per party, and the default rule only after scanning all parties:
//
//  1. roster match (exact or fuzzy) → MATCH_FOUND with the roster id
//  2. explicit client signal in text → NEW_CLIENT_PROPOSED
//  3. zero matches anywhere: a single party is assumed the client; with
//     several, the structurally most likely client role is proposed at
//     low confidence
//  4. everything else → OTHER_PARTY
func resolveAgainstRoster(parties []identifiedParty, roster []model.KnownClient, threshold float64) []model.Party {
	resolved := make([]model.Party, len(parties))
	anyClient := false

	for i, ip := range parties {
		resolved[i] = model.Party{Name: ip.Name, Role: ip.Role}

		if kc, score, ok := matchRoster(ip.Name, roster, threshold); ok {
			resolved[i].Resolution = model.ClientResolution{
				Status:     model.ResolutionMatchFound,
				ClientID:   kc.ID,
				ClientName: kc.Name,
				Confidence: score,
			}
			anyClient = true
			continue
		}

		if ip.ClientSignal {
			resolved[i].Resolution = model.ClientResolution{
				Status:     model.ResolutionNewClientProposed,
				ClientName: ip.Name,
				Confidence: 0.8,
			}
			anyClient = true
			continue
		}

		resolved[i].Resolution = model.ClientResolution{
			Status:     model.ResolutionOtherParty,
			Confidence: 0.5,
		}
	}

	if !anyClient && len(resolved) > 0 {
		idx, conf := likelyClientIndex(parties)
		resolved[idx].Resolution = model.ClientResolution{
			Status:     model.ResolutionNewClientProposed,
			ClientName: resolved[idx].Name,
			Confidence: conf,
			Assumed:    true,
		}
	}

	return resolved
}

// likelyClientIndex picks the default-rule candidate: the only party when
// there is exactly one, otherwise the first party whose role looks like
// the client side, otherwise the first party.
func likelyClientIndex(parties []identifiedParty) (int, float64) {
	if len(parties) == 1 {
		return 0, 0.5
	}
	for i, ip := range parties {
		role := strings.ToLower(ip.Role)
		for _, hint := range clientRoleHints {
			if strings.Contains(role, hint) {
				return i, 0.3
			}
		}
	}
	return 0, 0.3
}
