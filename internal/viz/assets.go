package viz

// Inline stylesheet for the self-contained report. Dark theme is the default;
// the toggle flips the data-theme attribute.
const reportCSS = `:root{color-scheme:dark light;}
body[data-theme='dark']{--bg:#0f141a;--surface:#151d24;--surface-muted:#1a2430;--surface-soft:#111922;--text:#e8edf3;--text-muted:#9fb0c3;--accent:#8bb9ff;--border:#324253;--chip-bg:#1f2b38;--button-bg:#1d2a38;--button-hover:#25364a;}
body[data-theme='light']{--bg:#f4f6f8;--surface:#ffffff;--surface-muted:#f6f9fc;--surface-soft:#fcfdff;--text:#1a1a1a;--text-muted:#44566a;--accent:#0f2742;--border:#d7dee8;--chip-bg:#ffffff;--button-bg:#f8fafc;--button-hover:#edf2f8;}
body{margin:0;background:var(--bg);color:var(--text);font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,sans-serif;}
a{color:var(--accent);}
main{max-width:1280px;margin:0 auto;padding:24px;}
h1{margin:0;font-size:28px;}
h2{margin:0 0 12px;font-size:20px;}
h3{margin:0 0 8px;font-size:14px;color:var(--accent);text-transform:uppercase;letter-spacing:0.04em;}
h4{margin:0 0 8px;font-size:14px;color:var(--accent);}
.overview,.media-section,.results-section{background:var(--surface);border:1px solid var(--border);border-radius:12px;padding:16px 18px;margin-bottom:16px;}
.overview-header{display:flex;justify-content:space-between;align-items:center;gap:12px;margin-bottom:16px;}
.theme-toggle,.control-btn{border:1px solid var(--border);background:var(--button-bg);color:var(--text);border-radius:8px;padding:6px 10px;font-size:13px;cursor:pointer;}
.theme-toggle:hover,.control-btn:hover{background:var(--button-hover);}
.overview-grid{display:grid;grid-template-columns:220px 1fr;gap:8px 12px;align-items:start;}
.label{font-weight:700;color:var(--accent);}
.value{word-break:break-word;}
.command-block pre{margin:0;padding:10px;border-radius:8px;background:var(--surface-muted);border:1px solid var(--border);overflow:auto;}
.exit-code,.preview-count{font-weight:600;color:var(--accent);}
.summary-block{display:grid;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));gap:8px;margin:12px 0;}
.summary-row{display:flex;justify-content:space-between;gap:8px;padding:8px 10px;border:1px solid var(--border);border-radius:8px;background:var(--surface-soft);}
.summary-label{font-weight:600;}
.summary-value{font-weight:700;}
.artifact-block{display:flex;flex-direction:column;gap:6px;margin:8px 0 12px;}
.search-controls,.pagination-controls,.card-controls{display:flex;gap:8px;align-items:center;flex-wrap:wrap;margin:8px 0 10px;}
.search-label{font-size:13px;font-weight:600;color:var(--accent);}
.search-input{min-width:280px;max-width:520px;flex:1;padding:7px 10px;border-radius:8px;border:1px solid var(--border);background:var(--surface-soft);color:var(--text);}
.search-input::placeholder{color:var(--text-muted);}
.page-size-select{padding:6px 10px;border-radius:8px;border:1px solid var(--border);background:var(--surface-soft);color:var(--text);}
.page-status{font-size:13px;color:var(--text-muted);}
.dup-cards{display:grid;gap:10px;}
.dup-card{border:1px solid var(--border);border-radius:10px;background:var(--surface-soft);overflow:hidden;}
.dup-card-summary{display:flex;gap:8px;flex-wrap:wrap;align-items:center;padding:10px 12px;cursor:pointer;background:var(--surface-muted);}
.summary-chip{border:1px solid var(--border);border-radius:999px;padding:3px 8px;background:var(--chip-bg);font-size:12px;line-height:1.4;}
.dup-card-body{padding:12px;display:grid;gap:12px;}
.dup-card-section{display:grid;gap:8px;}
.media-item{display:grid;grid-template-columns:160px minmax(220px,1fr);gap:10px;padding:8px;border:1px solid var(--border);border-radius:8px;background:var(--surface);}
.media-preview{width:160px;height:110px;background:var(--surface-muted);border-radius:6px;display:flex;align-items:center;justify-content:center;overflow:hidden;}
.media-preview img,.media-preview video{width:100%;height:100%;object-fit:cover;display:block;}
.preview-unavailable{font-size:12px;color:var(--text-muted);padding:8px;text-align:center;}
.media-meta{min-width:0;display:grid;gap:6px;align-content:start;}
.media-name{font-weight:700;word-break:break-word;}
.media-actions{display:flex;gap:10px;flex-wrap:wrap;}
.media-link{font-size:12px;}
.media-details{display:grid;gap:4px;font-size:12px;color:var(--text-muted);}
.remove-items{display:grid;gap:8px;}
.search-empty,.empty,.empty-inline{margin:0;padding:10px;border:1px dashed var(--border);border-radius:8px;background:var(--surface-muted);color:var(--text-muted);}
@media (max-width:900px){main{padding:12px;}.overview-grid{grid-template-columns:1fr;}.media-item{grid-template-columns:1fr;}.media-preview{width:100%;height:220px;}}`

// Inline behavior: theme toggle, card expand/collapse, filename search and
// client-side pagination. Kept dependency-free so the report works offline.
const reportJS = `function czkToggleTheme() {
  const body = document.body;
  const button = document.getElementById('theme-toggle');
  const next = (body.getAttribute('data-theme') || 'dark') === 'dark' ? 'light' : 'dark';
  body.setAttribute('data-theme', next);
  if (button) { button.textContent = next === 'dark' ? 'Light mode' : 'Dark mode'; }
}
function czkToggleCards(sectionId, shouldOpen) {
  const container = document.getElementById(sectionId);
  if (!container) { return; }
  container.querySelectorAll('.dup-card').forEach((card) => { card.open = shouldOpen; });
}
function czkApplyView(sectionId, pageDelta, jump) {
  const container = document.getElementById(sectionId);
  const input = document.getElementById(sectionId + '-search');
  const sizeSelect = document.getElementById(sectionId + '-page-size');
  if (!container || !input || !sizeSelect) { return; }
  const query = input.value.trim().toLowerCase();
  const parsedSize = Number.parseInt(sizeSelect.value, 10);
  const pageSize = [25, 50, 100].includes(parsedSize) ? parsedSize : 25;
  let page = Number.parseInt(container.dataset.page || '1', 10);
  if (!Number.isFinite(page) || page < 1) { page = 1; }
  if (pageDelta === 0) { page = 1; }
  if (pageDelta) { page += pageDelta; }
  const matched = [];
  container.querySelectorAll('.dup-card').forEach((card) => {
    const text = (card.dataset.search || '').toLowerCase();
    if (query === '' || text.includes(query)) {
      matched.push(card);
      if (query !== '') { card.open = true; }
    } else {
      card.hidden = true;
    }
  });
  const totalPages = matched.length === 0 ? 1 : Math.ceil(matched.length / pageSize);
  if (jump === 'first') { page = 1; }
  if (jump === 'last') { page = totalPages; }
  if (page > totalPages) { page = totalPages; }
  if (page < 1) { page = 1; }
  const start = (page - 1) * pageSize;
  matched.forEach((card, index) => { card.hidden = index < start || index >= start + pageSize; });
  container.dataset.page = String(page);
  const empty = container.querySelector('.search-empty');
  if (empty) { empty.hidden = matched.length !== 0; }
  const status = document.getElementById(sectionId + '-page-status');
  if (status) {
    status.textContent = matched.length === 0 ? 'Page 0 of 0' : 'Page ' + page + ' of ' + totalPages;
  }
  const atStart = matched.length === 0 || page <= 1;
  const atEnd = matched.length === 0 || page >= totalPages;
  const setDisabled = (suffix, value) => {
    const button = document.getElementById(sectionId + suffix);
    if (button) { button.disabled = value; }
  };
  setDisabled('-page-first', atStart);
  setDisabled('-page-prev', atStart);
  setDisabled('-page-next', atEnd);
  setDisabled('-page-last', atEnd);
}
function czkFilterCards(sectionId) { czkApplyView(sectionId, 0, null); }
function czkChangePage(sectionId, delta) { czkApplyView(sectionId, delta, null); }
function czkJumpPage(sectionId, target) { czkApplyView(sectionId, null, target); }
function czkClearSearch(sectionId) {
  const input = document.getElementById(sectionId + '-search');
  if (!input) { return; }
  input.value = '';
  czkFilterCards(sectionId);
}`
