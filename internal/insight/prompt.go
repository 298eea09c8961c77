package insight

import "fmt"

// promptTemplate frames the model as an analyst over the aggregate
// table. The table and the user question are the only variable parts.
const promptTemplate = `You are a world-class energy data analyst working with global energy consumption data.

Below is average energy consumption (in TWh), grouped by country and year:

%s

Use this data to analyze energy trends and patterns. Your goal is to:

1. Understand the growth trends per country using recent years.
2. If the user asks about energy consumption in a future year, apply reasonable forecasting logic such as linear extrapolation, compound annual growth rate, or moving averages.
3. Support your answer with observed values from the dataset and describe the method you used to project.

Now, answer this user question:

Question: %s`

// renderPrompt fills the analysis prompt with the aggregate table and
// the user question.
func renderPrompt(table, question string) string {
	return fmt.Sprintf(promptTemplate, table, question)
}
