// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gen

import "strings"

// SystemInstruction is the default persona block. The product surface is
// Turkish, so the instruction and all section markers are Turkish too.
const SystemInstruction = "Sen bir sağlık turizmi asistanısın. Kullanıcılara Türkiye'deki " +
	"klinikler, oteller ve tedaviler hakkında yardımcı oluyorsun. Yalnızca sana verilen " +
	"bağlam bilgisine dayanarak, kısa ve nazik Türkçe yanıtlar ver. Bağlamda olmayan " +
	"bilgi uydurma."

// Prompt assembles the sectioned prompt the generation backend expects.
// Sections appear in a fixed order; the context section is omitted entirely
// when there is no retrieved context, rather than left as an empty header.
type Prompt struct {
	System  string
	Context string
	User    string
}

// Render flattens the prompt into the single-string format sent to the
// backend, ending with an open assistant section for the model to complete.
func (p Prompt) Render() string {
	var b strings.Builder

	system := p.System
	if system == "" {
		system = SystemInstruction
	}
	b.WriteString("[SİSTEM]\n")
	b.WriteString(system)
	b.WriteString("\n\n")

	if p.Context != "" {
		b.WriteString("[BAĞLAM]\n")
		b.WriteString(p.Context)
		b.WriteString("\n\n")
	}

	b.WriteString("[KULLANICI]\n")
	b.WriteString(p.User)
	b.WriteString("\n\n[ASİSTAN]\n")
	return b.String()
}
