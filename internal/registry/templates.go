package registry

// PromptTemplate is one quick-start prompt exposed by the template picker.
type PromptTemplate struct {
	Icon   string `json:"icon"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// TemplateCategory groups templates for display.
type TemplateCategory struct {
	Key       string           `json:"key"`
	Title     string           `json:"title"`
	Templates []PromptTemplate `json:"templates"`
}

var templates = []TemplateCategory{
	{
		Key:   "academic",
		Title: "Academic & Research",
		Templates: []PromptTemplate{
			{Icon: "📚", Title: "Essay Outline", Prompt: "Create a detailed essay outline on the topic: [your topic]. Include introduction, main points, supporting evidence, and conclusion."},
			{Icon: "🔬", Title: "Research Summary", Prompt: "Summarize the following research topic in simple terms, including key concepts and findings: [your topic]"},
			{Icon: "📝", Title: "Citation Helper", Prompt: "Help me create citations in APA/MLA format for the following source: [source details]"},
			{Icon: "🎓", Title: "Study Guide", Prompt: "Create a comprehensive study guide for the following subject, including key concepts, definitions, and practice questions: [subject]"},
		},
	},
	{
		Key:   "writing",
		Title: "Writing & Content",
		Templates: []PromptTemplate{
			{Icon: "✍️", Title: "Grammar Check", Prompt: "Please check the following text for grammar, spelling, and clarity: [your text]"},
			{Icon: "📧", Title: "Email Writer", Prompt: "Write a professional email for: [purpose]. Tone should be [formal/casual]."},
			{Icon: "📄", Title: "Resume Builder", Prompt: "Help me write a compelling resume bullet point for this experience: [your experience]"},
			{Icon: "🎨", Title: "Creative Writing", Prompt: "Help me brainstorm creative ideas for a story about: [your theme]"},
		},
	},
	{
		Key:   "learning",
		Title: "Learning & Tutoring",
		Templates: []PromptTemplate{
			{Icon: "🧮", Title: "Math Solver", Prompt: "Explain how to solve this math problem step by step: [your problem]"},
			{Icon: "💡", Title: "Concept Explainer", Prompt: "Explain the following concept in simple terms with examples: [concept]"},
			{Icon: "🗣️", Title: "Language Practice", Prompt: "Help me practice [language] by having a conversation about [topic]"},
			{Icon: "❓", Title: "Q&A Tutor", Prompt: "I have questions about [subject]. Can you explain: [your question]"},
		},
	},
	{
		Key:   "productivity",
		Title: "Productivity & Planning",
		Templates: []PromptTemplate{
			{Icon: "📋", Title: "To-Do Organizer", Prompt: "Help me organize and prioritize these tasks: [list your tasks]"},
			{Icon: "🎯", Title: "Goal Planner", Prompt: "Help me create a step-by-step plan to achieve this goal: [your goal]"},
			{Icon: "📊", Title: "Data Analysis", Prompt: "Analyze this data and provide insights: [your data]"},
			{Icon: "💼", Title: "Meeting Notes", Prompt: "Help me organize these meeting notes into action items: [your notes]"},
		},
	},
	{
		Key:   "coding",
		Title: "Programming & Tech",
		Templates: []PromptTemplate{
			{Icon: "💻", Title: "Code Explainer", Prompt: "Explain what this code does line by line: [paste code]"},
			{Icon: "🐛", Title: "Debug Helper", Prompt: "Help me debug this code error: [error message and code]"},
			{Icon: "⚡", Title: "Code Optimizer", Prompt: "Suggest optimizations for this code: [paste code]"},
			{Icon: "📖", Title: "Documentation", Prompt: "Generate documentation for this function/class: [paste code]"},
		},
	},
}

// Templates returns all template categories in display order.
func Templates() []TemplateCategory {
	return templates
}
