package gemini

const restorePrompt = `You are an expert archaeological conservator. Restore the damaged artifact in this photo:
repair cracks and breaks, fill missing areas consistently with the original style, material and period,
and recover faded pigments. Keep the viewpoint, framing, lighting and proportions exactly as in the input
so the result can be overlaid on the original. Return only the restored image.`

const translatePrompt = `You are an expert epigrapher and philologist. Examine the inscription, tablet or manuscript in this image.
1. Identify the script, language and likely period.
2. Give a faithful transcription, marking illegible or missing signs with [...].
3. Translate the text into %s.
4. Add brief notes on uncertain readings and historical context.
Use the headings **Script & Language**, **Transcription**, **Translation** and **Notes**. Answer in %[1]s.`

const mosaicPrompt = `You are an expert in ancient mosaics. Complete the missing and damaged tesserae of this mosaic fragment
so the full design is visible. Match the existing colours, tessera size, setting pattern and iconography.
Do not alter the surviving tesserae, and keep the framing identical to the input. Return only the completed image.`

const mosaicContextPrompt = `
Additional context from the archaeologist: %s`

const vasePrompt = `You are an expert in ancient ceramics. Reconstruct the complete vessel shown in this photo of a vase or its sherds:
restore the full profile and its painted decoration in the style of its workshop and period, keeping the
viewpoint of the input. Return the reconstructed image. If an image cannot be produced, describe the shape,
ware, decoration, probable date and origin instead.`
