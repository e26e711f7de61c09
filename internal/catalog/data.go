package catalog

import "github.com/kctmenswear/atelier-engine/internal/engine"

// defaultScenarios is the trained storefront set: prompts customers actually
// send, each with contextual reply variants.
var defaultScenarios = []engine.Scenario{
	{
		ID:     "wedding_planning_1",
		Prompt: "getting married in October need full outfit",
		Intent: engine.IntentWedding,
		Variants: []engine.Response{
			{
				ID: "wedding_planning_1_morning",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeMorning, Stage: engine.StageGreeting,
					Mood: engine.MoodExcited, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
				},
				Text:     "Congratulations! October weddings are stunning. Let's create your perfect look from suit to shoes.",
				Tone:     engine.ToneFriendly,
				FollowUp: "What's your wedding style - classic, modern, or somewhere in between?",
			},
			{
				ID: "wedding_planning_1_stressed",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageDiscovery,
					Mood: engine.MoodStressed, Urgency: engine.UrgencyHigh, Channel: engine.ChannelChat,
					PriorInteractions: 2,
				},
				Text:     "I understand the pressure. Let me simplify this - we have complete wedding packages that take care of everything.",
				Tone:     engine.ToneEmpathetic,
				FollowUp: "Would you prefer to see our most popular wedding combinations first?",
			},
			{
				ID: "wedding_planning_1_curated",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageRecommendation,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyMedium, Channel: engine.ChannelEmail,
					PriorInteractions: 5,
				},
				Text:     "Based on our previous discussions, I've curated three complete October wedding looks for you. Each includes suit, shirt, tie, shoes, and accessories.",
				Tone:     engine.ToneProfessional,
				FollowUp: "Shall I send you the detailed breakdown with pricing?",
			},
			{
				ID: "wedding_planning_1_night",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeNight, Stage: engine.StageGreeting,
					Mood: engine.MoodExcited, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Late night wedding planning? I get it! October gives us time to get everything perfect. Excited to help!",
				Tone:     engine.ToneCasual,
				FollowUp: "Indoor or outdoor ceremony? Makes a difference for fabric choices.",
			},
			{
				ID: "wedding_planning_1_rush",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageGreeting,
					Mood: engine.MoodStressed, Urgency: engine.UrgencyEmergency, Channel: engine.ChannelChat,
				},
				Text:     "A wedding on short notice - we've got this. Our ready-to-wear suits need no alterations and can go home with you today.",
				Tone:     engine.ToneUrgent,
				FollowUp: "What's your jacket size, or should we start with a quick measurement?",
			},
		},
	},
	{
		ID:     "prom_parent_1",
		Prompt: "son's prom need something affordable but nice",
		Intent: engine.IntentProm,
		Variants: []engine.Response{
			{
				ID: "prom_parent_1_value",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageGreeting,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
				},
				Text:     "Prom season is our specialty! Our $199 complete packages cover suit, shirt, tie, and shoes - he'll look sharp without the splurge.",
				Tone:     engine.ToneFriendly,
				FollowUp: "Does he have a date wearing a specific color?",
			},
			{
				ID: "prom_parent_1_casual",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageDiscovery,
					Mood: engine.MoodHappy, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
					PriorInteractions: 1,
				},
				Text:     "Nice and affordable is totally doable. Slim-fit suits in this season's colors start well under $200.",
				Tone:     engine.ToneCasual,
				FollowUp: "Want to see the most popular prom looks first?",
			},
			{
				ID: "prom_parent_1_expert",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeMorning, Stage: engine.StageRecommendation,
					Mood: engine.MoodConfused, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
					PriorInteractions: 4,
				},
				Text:     "For prom I'd steer toward a slim-fit in burgundy or midnight blue - photogenic, on-trend, and friendly to the budget.",
				Tone:     engine.ToneExpert,
				FollowUp: "Shall I put together two or three complete options with prices?",
			},
		},
	},
	{
		ID:     "sizing_help_1",
		Prompt: "I don't know my size how do I measure",
		Intent: engine.IntentSizing,
		Variants: []engine.Response{
			{
				ID: "sizing_help_1_reassure",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeMorning, Stage: engine.StageGreeting,
					Mood: engine.MoodStressed, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "No worries! We'll find your perfect fit together. Let's start simple.",
				Tone:     engine.ToneFriendly,
				FollowUp: "Do you have a tape measure handy, or should I guide you with a shirt that fits well?",
			},
			{
				ID: "sizing_help_1_technical",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageDiscovery,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
					PriorInteractions: 2,
				},
				Text:     "I'll guide you through precise measurements. It's easier than you think - chest, waist, and sleeve take two minutes.",
				Tone:     engine.ToneExpert,
				FollowUp: "Ready to start with the chest measurement?",
			},
			{
				ID: "sizing_help_1_confident",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageGreeting,
					Mood: engine.MoodConfused, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Easy - I'll have you sized perfectly in 2 minutes. Ready?",
				Tone:     engine.ToneCasual,
				FollowUp: "Grab any dress shirt that fits you well and we'll decode the rest.",
			},
		},
	},
	{
		ID:     "budget_inquiry_1",
		Prompt: "how much does a good suit cost",
		Intent: engine.IntentBudget,
		Variants: []engine.Response{
			{
				ID: "budget_inquiry_1_range",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageDiscovery,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Great suits at every price point. What's your comfort zone?",
				Tone:     engine.ToneProfessional,
				FollowUp: "Our bundles start at $199; investment pieces run $395 and up.",
			},
			{
				ID: "budget_inquiry_1_bundle",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeMorning, Stage: engine.StageGreeting,
					Mood: engine.MoodHappy, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
				},
				Text:     "Our $199 bundles are incredible value - complete outfit sorted!",
				Tone:     engine.ToneFriendly,
				FollowUp: "What's the occasion you're shopping for?",
			},
			{
				ID: "budget_inquiry_1_quality",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageRecommendation,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
					PriorInteractions: 6,
				},
				Text:     "Investment pieces from $395. Quality that lasts years.",
				Tone:     engine.ToneExpert,
				FollowUp: "Would you like to compare the fabric options side by side?",
			},
		},
	},
	{
		ID:     "business_wardrobe_1",
		Prompt: "starting a new office job need work clothes",
		Intent: engine.IntentBusiness,
		Variants: []engine.Response{
			{
				ID: "business_wardrobe_1_starter",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeMorning, Stage: engine.StageGreeting,
					Mood: engine.MoodExcited, Urgency: engine.UrgencyMedium, Channel: engine.ChannelChat,
				},
				Text:     "Congrats on the new role! A navy and a charcoal suit with three shirts covers your first month of rotations.",
				Tone:     engine.ToneProfessional,
				FollowUp: "What's the dress code - full suits daily, or business casual?",
			},
			{
				ID: "business_wardrobe_1_interview",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageDiscovery,
					Mood: engine.MoodStressed, Urgency: engine.UrgencyHigh, Channel: engine.ChannelChat,
					PriorInteractions: 1,
				},
				Text:     "Interview coming up fast? A well-fitted charcoal suit reads confident in any industry. We can have you ready this week.",
				Tone:     engine.ToneEmpathetic,
				FollowUp: "When is the interview?",
			},
		},
	},
	{
		ID:     "style_match_1",
		Prompt: "girlfriend wearing red dress what should I wear",
		Intent: engine.IntentStyle,
		Variants: []engine.Response{
			{
				ID: "style_match_1_classic",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageDiscovery,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "With a red dress, charcoal or midnight blue will make you both pop. Add a subtle burgundy tie to tie the look together.",
				Tone:     engine.ToneExpert,
				FollowUp: "Is this for a formal event or a night out?",
			},
			{
				ID: "style_match_1_casual",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeNight, Stage: engine.StageGreeting,
					Mood: engine.MoodHappy, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Classic move checking first! Go darker than her dress - black or deep navy - and you'll coordinate without matching.",
				Tone:     engine.ToneCasual,
				FollowUp: "Want a couple of complete outfit ideas?",
			},
		},
	},
	{
		ID:     "emergency_fit_1",
		Prompt: "need a suit tonight emergency",
		Intent: engine.IntentEmergency,
		Variants: []engine.Response{
			{
				ID: "emergency_fit_1_now",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageGreeting,
					Mood: engine.MoodStressed, Urgency: engine.UrgencyEmergency, Channel: engine.ChannelChat,
				},
				Text:     "I understand the urgency. Our ready-to-wear line needs zero alterations - tell me your usual jacket size and I'll pull options immediately.",
				Tone:     engine.ToneUrgent,
				FollowUp: "Can you make it to the store in the next two hours?",
			},
			{
				ID: "emergency_fit_1_calm",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeEvening, Stage: engine.StageDiscovery,
					Mood: engine.MoodFrustrated, Urgency: engine.UrgencyEmergency, Channel: engine.ChannelChat,
					PriorInteractions: 1,
				},
				Text:     "Deep breath - we handle last-minute all the time. Express options are in stock in every common size.",
				Tone:     engine.ToneUrgent,
				FollowUp: "What size do you usually wear in a blazer?",
			},
		},
	},
	{
		ID:     "general_browse_1",
		Prompt: "just looking around what do you have",
		Intent: engine.IntentGeneral,
		Variants: []engine.Response{
			{
				ID: "general_browse_1_open",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeAfternoon, Stage: engine.StageGreeting,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Welcome! Suits, tuxedos, blazers, and complete occasion bundles - browse freely and I'm here when questions come up.",
				Tone:     engine.ToneFriendly,
				FollowUp: "Shopping for a particular occasion, or just exploring?",
			},
			{
				ID: "general_browse_1_night",
				Context: engine.Snapshot{
					TimeOfDay: engine.TimeNight, Stage: engine.StageGreeting,
					Mood: engine.MoodNeutral, Urgency: engine.UrgencyLow, Channel: engine.ChannelChat,
				},
				Text:     "Night owl shopping - the best kind. Our trending section is a good place to start.",
				Tone:     engine.ToneCasual,
				FollowUp: "Want me to show what's new this season?",
			},
		},
	},
}
