// Package templates renders the HTML pages served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PageData is what the upload page shows.
type PageData struct {
	Title         string
	SourceColumns []string
	TargetColumns []string
	MaxFileSizeMB int64
}

// Page renders the upload page. The form posts to /api/validate and
// /api/export; the inline script renders the JSON answer.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<title>%s</title>`, templ.EscapeString(data.Title))
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<style>` + pageCSS + `</style></head><body><main>`)
		fmt.Fprintf(&b, `<h1>%s</h1>`, templ.EscapeString(data.Title))

		b.WriteString(`<section><h2>Colunas esperadas</h2><ul>`)
		for _, col := range data.SourceColumns {
			fmt.Fprintf(&b, `<li><code>%s</code></li>`, templ.EscapeString(col))
		}
		b.WriteString(`</ul><p><a href="/api/template">Baixar planilha modelo (.xlsx)</a></p></section>`)

		b.WriteString(`<section><form id="upload" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="file" accept=".csv,.xlsx" required>`)
		fmt.Fprintf(&b, `<small>Máximo %d MB</small>`, data.MaxFileSizeMB)
		b.WriteString(`<label><input type="checkbox" name="report" value="csv"> Salvar relatório de rejeitados</label>`)
		b.WriteString(`<div class="actions"><button type="submit" data-action="/api/validate">Validar</button>`)
		b.WriteString(`<button type="submit" data-action="/api/export">Exportar</button></div></form></section>`)

		b.WriteString(`<section id="result" hidden><h2>Resultado</h2><p id="summary"></p>`)
		b.WriteString(`<table><thead><tr><th>Linha</th><th>SKU</th><th>Erro</th><th>Valor</th><th>Observação</th></tr></thead>`)
		b.WriteString(`<tbody id="rejected"></tbody></table></section>`)

		fmt.Fprintf(&b, `<footer>Colunas do modelo: %s</footer>`, templ.EscapeString(strings.Join(data.TargetColumns, ", ")))
		b.WriteString(`</main><script>` + pageJS + `</script></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorAlert renders an error message block.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong> <span>%s</span> <code>%s</code></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

const pageCSS = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1d2330}
main{max-width:960px;margin:0 auto;padding:2rem}
section{background:#fff;border:1px solid #e3e6eb;border-radius:8px;padding:1rem 1.5rem;margin-bottom:1rem}
.actions{margin-top:1rem;display:flex;gap:.5rem}
button{padding:.5rem 1rem;border-radius:6px;border:1px solid #2f5bd3;background:#2f5bd3;color:#fff;cursor:pointer}
table{width:100%;border-collapse:collapse}td,th{border-bottom:1px solid #e3e6eb;padding:.25rem .5rem;text-align:left}
.alert{background:#fdecea;border:1px solid #f5c2bd;padding:.75rem;border-radius:6px}
footer{font-size:.8rem;color:#6b7280}`

const pageJS = `const form=document.getElementById('upload');let action='/api/validate';
form.querySelectorAll('button').forEach(b=>b.addEventListener('click',()=>{action=b.dataset.action}));
form.addEventListener('submit',async e=>{e.preventDefault();const fd=new FormData(form);
let url=action;const rep=fd.get('report');fd.delete('report');if(rep&&action==='/api/export'){url+='?report='+rep}
const res=await fetch(url,{method:'POST',body:fd,headers:{'Accept':'application/json'}});const body=await res.json();
const out=document.getElementById('result');out.hidden=false;const tbody=document.getElementById('rejected');tbody.textContent='';
if(!res.ok){document.getElementById('summary').textContent=body.message+' ('+body.code+'). '+(body.action||'');return}
const s=body.summary||{accepted:body.accepted,rejected:(body.rejected||[]).length,totalRows:body.totalRows};
let text=s.accepted+' aceitas, '+s.rejected+' rejeitadas de '+s.totalRows+' linhas.';if(body.output){text+=' Arquivo: '+body.output}
if(body.reportError){text+=' Relatório de rejeitados não salvo: '+body.reportError}
document.getElementById('summary').textContent=text;
(body.rejected||[]).forEach(r=>{const tr=document.createElement('tr');
[r.line,r.sku,r.reason,r.listedPrice,r.totalCost].forEach(v=>{const td=document.createElement('td');td.textContent=v;tr.appendChild(td)});
tbody.appendChild(tr)})});`
