package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"screening-datagen/internal/background"
	"screening-datagen/internal/catalog"
	"screening-datagen/internal/draw"
	"screening-datagen/internal/llm"
	"screening-datagen/pkg"
)

// Token usage buckets of a session record.
const (
	UsageDoctor         = "doctor"
	UsagePatient        = "patient"
	UsageDoctorManager  = "doctor_manager"
	UsagePatientManager = "patient_manager"
)

// Params are the generation settings of an Engine.
type Params struct {
	Provider                string
	Model                   string
	Temperature             float64
	MaxTokens               int
	ManagerTemperature      float64
	ManagerMaxTokens        int
	PatientManagerMaxTokens int
	// RandomTemperature draws doctor and patient temperatures from
	// U(0.6, 1.4) per session.
	RandomTemperature bool
	// RandomMaxTokens draws the speaker token limit from [200, 400].
	RandomMaxTokens bool
}

// DefaultParams returns the standard generation settings.
func DefaultParams() Params {
	return Params{
		Provider:                "openai",
		Model:                   "gpt-4.1-mini",
		Temperature:             1.0,
		MaxTokens:               1000,
		ManagerTemperature:      1.0,
		ManagerMaxTokens:        1000,
		PatientManagerMaxTokens: 300,
	}
}

// SessionInput carries everything sampled before the conversation starts.
// Rng is the batch RNG; the session continues drawing from it.
type SessionInput struct {
	Seed            int64
	Rng             *rand.Rand
	Profile         *pkg.PatientProfile
	Background      *pkg.LifeBackground
	BackgroundTrace *pkg.PromptTrace
	BackgroundUsage pkg.TokenUsage
	Persona         pkg.DoctorPersona
	Microstyle      pkg.Microstyle
}

// Engine runs screening sessions against an LLM client.
type Engine struct {
	llm    llm.Client
	params Params
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewEngine constructs an Engine.
func NewEngine(client llm.Client, params Params, log logrus.FieldLogger) *Engine {
	return &Engine{llm: client, params: params, log: log, now: time.Now}
}

// Run plays one full session and returns its record. Every DSM item is asked
// exactly once unless the context is cancelled, in which case the error is
// returned and the partial session is discarded.
func (e *Engine) Run(ctx context.Context, in SessionInput) (*pkg.SessionRecord, error) {
	if in.Profile == nil {
		return nil, errors.New("session input has no profile")
	}
	if in.Rng == nil {
		return nil, errors.New("session input has no rng")
	}

	agentID := AgentID(in.Profile, in.Persona.ID, in.Microstyle)
	doctorTemp, patientTemp, maxTokens := e.sampleParams(in.Rng)
	plan := Plan(in.Microstyle.Pacing, in.Persona.ID)

	rec := &pkg.SessionRecord{
		RunID:          uuid.NewString(),
		AgentID:        agentID,
		CreatedAt:      e.now().UTC(),
		Seed:           in.Seed,
		Profile:        *in.Profile,
		LifeBackground: in.Background,
		Persona:        in.Persona,
		Microstyle:     in.Microstyle,
		GroundTruth:    make(map[string]pkg.Frequency, len(in.Profile.SymptomFrequency)),
		Plan:           plan,
		TokenUsage: map[string]pkg.TokenUsage{
			UsageDoctor:         {},
			UsagePatient:        {},
			UsageDoctorManager:  {},
			UsagePatientManager: {},
		},
		CallParameters: pkg.CallParameters{
			Provider:           e.params.Provider,
			Model:              e.params.Model,
			DoctorTemperature:  doctorTemp,
			PatientTemperature: patientTemp,
			MaxTokens:          maxTokens,
		},
	}
	for k, v := range in.Profile.SymptomFrequency {
		rec.GroundTruth[k] = v
	}
	if in.BackgroundTrace != nil {
		rec.PromptTraces = append(rec.PromptTraces, *in.BackgroundTrace)
		rec.TokenUsage[background.AgentName] = in.BackgroundUsage
	}

	log := e.log.WithFields(logrus.Fields{"agent_id": agentID, "run_id": rec.RunID})
	log.WithFields(logrus.Fields{
		"template":   in.Profile.TemplateID,
		"persona":    in.Persona.ID,
		"max_turns":  plan.MaxDoctorTurns,
		"dsm_budget": plan.DSMTurnBudget,
		"target":     plan.TargetTurnsPerSymptom,
	}).Debug("session started")

	s := &session{
		e:     e,
		in:    in,
		rec:   rec,
		log:   log,
		plan:  plan,
		pool:  append([]string(nil), catalog.DSMItems...),
		stage: InitialDisclosure(in.Profile.VoiceStyle),
		mctx: managerContext{
			persona:    in.Persona,
			microstyle: in.Microstyle,
			profile:    in.Profile,
			summary:    Summarize(in.Profile),
		},
		doctor: NewSpeaker(UsageDoctor, e.llm, DoctorSystemPrompt(in.Persona, in.Microstyle, in.Background),
			CallParams{Temperature: llm.Float(doctorTemp), MaxTokens: maxTokens}, DoctorFallbackLine),
		patient: NewSpeaker(UsagePatient, e.llm, PatientSystemPrompt(in.Profile, in.Background),
			CallParams{Temperature: llm.Float(patientTemp), MaxTokens: maxTokens}, PatientFallbackLine),
	}
	if err := s.run(ctx); err != nil {
		return nil, err
	}

	rec.AskedOrder = s.asked
	rec.FinalDisclosure = s.stage
	rec.DoctorTurns = s.elapsed
	rec.Transcript = s.history
	log.WithFields(logrus.Fields{
		"turns":      s.elapsed,
		"disclosure": s.stage,
		"lines":      len(s.history),
	}).Info("session complete")
	return rec, nil
}

func (e *Engine) sampleParams(rng *rand.Rand) (doctorTemp, patientTemp float64, maxTokens int) {
	doctorTemp, patientTemp = e.params.Temperature, e.params.Temperature
	if e.params.RandomTemperature {
		patientTemp = round2(0.6 + rng.Float64()*0.8)
		doctorTemp = round2(0.6 + rng.Float64()*0.8)
	}
	maxTokens = e.params.MaxTokens
	if e.params.RandomMaxTokens {
		maxTokens = draw.IntBetween(rng, 200, 400)
	}
	return doctorTemp, patientTemp, maxTokens
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// session is the mutable state of one run. history only grows; pool only
// shrinks, and only when an item is asked.
type session struct {
	e    *Engine
	in   SessionInput
	rec  *pkg.SessionRecord
	log  *logrus.Entry
	plan pkg.TurnPlan
	mctx managerContext

	doctor  *Speaker
	patient *Speaker

	history []pkg.Message
	pool    []string
	asked   []string
	stage   pkg.DisclosureStage
	elapsed int
}

func (s *session) run(ctx context.Context) error {
	greeting := s.in.Persona.Greeting
	s.doctor.Seed(greeting)
	s.say(pkg.RoleDoctor, greeting)
	reply := s.patientTurn(ctx, pkg.ActionRapport, greeting)

	for s.elapsed < s.plan.MaxDoctorTurns {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session %s interrupted: %w", s.rec.AgentID, err)
		}

		mode, ratio := SelectMode(s.plan, s.elapsed, len(s.pool))
		d := s.decide(ctx, mode, reply)
		s.elapsed++
		d.Turn = s.elapsed

		if d.NextAction == pkg.ActionEnd {
			s.rec.DoctorDecisions = append(s.rec.DoctorDecisions, d)
			s.doctor.Seed(ClosingLine)
			s.say(pkg.RoleDoctor, ClosingLine)
			break
		}
		if d.NextAction == pkg.ActionDSM {
			s.takeItem(&d)
		}
		s.rec.DoctorDecisions = append(s.rec.DoctorDecisions, d)
		s.log.WithFields(logrus.Fields{
			"turn":        s.elapsed,
			"mode":        mode,
			"ratio":       ratio,
			"next_action": d.NextAction,
			"dsm_key":     d.DSMSymptomKey,
			"instruction": d.DoctorInstruction,
			"fallback":    d.Fallback,
		}).Debug("doctor manager decision")

		msg := s.speak(ctx, s.doctor, DoctorTurnInput(reply, d.NextAction, d.DoctorInstruction))
		s.say(pkg.RoleDoctor, msg)
		reply = s.patientTurn(ctx, d.NextAction, msg)
	}

	if n := len(s.history); n > 0 && s.history[n-1].Role == pkg.RolePatient {
		s.say(pkg.RoleDoctor, WrapUpLine)
	}
	return nil
}

// takeItem validates the chosen key against the pool, falling back to the
// oldest uncovered item, and marks it asked.
func (s *session) takeItem(d *pkg.DoctorDecision) {
	idx := indexOf(s.pool, d.DSMSymptomKey)
	if idx < 0 {
		key := s.pool[0]
		s.log.WithFields(logrus.Fields{
			"turn":     s.elapsed,
			"invalid":  d.DSMSymptomKey,
			"fallback": key,
		}).Warn("manager chose a DSM key outside the remaining pool")
		d.DSMSymptomKey = key
		d.DoctorInstruction = askNaturally(key)
		d.Fallback = true
		d.Reason = ReasonInvalidKeyFallback
		idx = 0
	}
	s.pool = append(s.pool[:idx:idx], s.pool[idx+1:]...)
	s.asked = append(s.asked, d.DSMSymptomKey)
}

// decide runs the doctor manager for mode. Call failures take the same
// fallback as unusable output.
func (s *session) decide(ctx context.Context, mode Mode, lastPatient string) pkg.DoctorDecision {
	var input string
	switch mode {
	case ModePostDSM:
		input = s.mctx.postCoverageInput(s.history)
	case ModeForceDSM:
		input = s.mctx.forcedInput(s.pool[0], lastPatient)
	default:
		input = s.mctx.decisionInput(s.pool, s.history)
	}

	out, err := s.e.llm.Complete(ctx, llm.Request{
		System:      mode.SystemPrompt(),
		Input:       input,
		Temperature: llm.Float(s.e.params.ManagerTemperature),
		MaxTokens:   s.e.params.ManagerMaxTokens,
		JSON:        true,
	})
	s.trace(mode.Agent(), mode.SystemPrompt(), input, out, err)
	s.addUsage(UsageDoctorManager, out.Usage)

	var d pkg.DoctorDecision
	if err != nil {
		s.log.WithError(err).WithField("mode", mode).Warn("doctor manager call failed")
		d = FallbackDecision(mode, s.pool, s.in.Rng)
	} else {
		d = ParseDecision(mode, out.Text, s.pool, s.in.Rng)
		if d.Fallback {
			s.log.WithField("mode", mode).Warn(d.Reason)
		}
	}
	return d
}

// patientTurn runs the guidance step and then the patient speaker. The
// disclosure stage only changes here.
func (s *session) patientTurn(ctx context.Context, move pkg.Action, doctorMsg string) string {
	v := s.in.Profile.VoiceStyle
	input := PatientManagerInput(s.in.Profile, s.stage, move, s.history, doctorMsg)
	out, err := s.e.llm.Complete(ctx, llm.Request{
		System:      PatientManagerPrompt,
		Input:       input,
		Temperature: llm.Float(s.e.params.ManagerTemperature),
		MaxTokens:   s.e.params.PatientManagerMaxTokens,
		JSON:        true,
	})
	s.trace(PatientManagerAgent, PatientManagerPrompt, input, out, err)
	s.addUsage(UsagePatientManager, out.Usage)

	var g pkg.PatientGuidance
	ok := false
	if err != nil {
		s.log.WithError(err).Warn("patient manager call failed")
		g = DefaultGuidance(v, s.stage)
	} else if g, ok = ParseGuidance(out.Text, v, s.stage); !ok {
		s.log.Warn("patient manager returned invalid JSON, using default guidance")
	}
	s.stage = g.DisclosureStage
	s.rec.PatientGuidance = append(s.rec.PatientGuidance, pkg.GuidanceTrace{
		Turn:       s.elapsed,
		DoctorMove: move,
		Guidance:   g,
		Fallback:   !ok,
	})

	entry := s.log.WithFields(logrus.Fields{
		"turn":       s.elapsed,
		"directness": g.Directness,
		"disclosure": g.DisclosureStage,
		"length":     g.TargetLength,
	})
	entry.WithField("instruction", g.PatientInstruction).Debug("patient guidance")
	entry.WithFields(logrus.Fields{
		"emotional_state": g.EmotionalState,
		"tone_tags":       strings.Join(g.ToneTags, ","),
		"reveal":          strings.Join(g.KeyPointsToReveal, "; "),
		"avoid":           strings.Join(g.KeyPointsToAvoid, "; "),
	}).Trace("patient guidance detail")

	reply := s.speak(ctx, s.patient, PatientTurnInput(g, doctorMsg))
	s.say(pkg.RolePatient, reply)
	return reply
}

// speak runs a speaker turn and records its trace and usage.
func (s *session) speak(ctx context.Context, sp *Speaker, input string) string {
	reply, out, err := sp.Reply(ctx, input)
	s.trace(sp.Agent, sp.System, input, out, err)
	s.addUsage(sp.Agent, out.Usage)
	if err != nil {
		s.log.WithError(err).WithField("speaker", sp.Agent).Warn("speaker call failed, using fallback line")
	}
	return reply
}

func (s *session) say(role pkg.MessageRole, text string) {
	s.history = append(s.history, pkg.Message{Role: role, Content: text})
	s.log.WithFields(logrus.Fields{"speaker": role, "turn": s.elapsed}).Info(text)
}

func (s *session) trace(agent, system, input string, out llm.Completion, err error) {
	output := out.Text
	if err != nil {
		output = "ERROR: " + err.Error()
	}
	s.rec.PromptTraces = append(s.rec.PromptTraces, pkg.PromptTrace{
		Agent:        agent,
		TurnIndex:    s.elapsed,
		SystemPrompt: system,
		Input:        input,
		Output:       output,
	})
	s.log.WithFields(logrus.Fields{"agent": agent, "turn": s.elapsed, "input": input, "output": output}).Trace("prompt")
}

func (s *session) addUsage(bucket string, u llm.Usage) {
	s.rec.TokenUsage[bucket] = s.rec.TokenUsage[bucket].Add(pkg.TokenUsage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	})
}

func indexOf(items []string, v string) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}
